package editmodel

import (
	"errors"
	"reflect"
	"testing"

	"github.com/scopogger/healthypdf/internal/types"
)

func TestDelete(t *testing.T) {
	t.Run("marks page deleted without renumbering", func(t *testing.T) {
		m := New(3)
		if err := m.Delete(1); err != nil {
			t.Fatalf("Delete(1) error = %v", err)
		}
		if !m.IsDeleted(1) {
			t.Error("page 1 not deleted")
		}
		if got := m.VisibleOrder(); !reflect.DeepEqual(got, []types.PageID{0, 2}) {
			t.Errorf("visible order = %v, want [0 2]", got)
		}
		if n, ok := m.DisplayNumber(2); !ok || n != 2 {
			t.Errorf("DisplayNumber(2) = %d/%v, want 2/true", n, ok)
		}
		if !m.Modified() {
			t.Error("model not marked modified")
		}
	})

	t.Run("last page guarded", func(t *testing.T) {
		m := New(2)
		if err := m.Delete(0); err != nil {
			t.Fatal(err)
		}
		err := m.Delete(1)
		if !errors.Is(err, ErrLastPage) {
			t.Fatalf("error = %v, want ErrLastPage", err)
		}
		if m.IsDeleted(1) {
			t.Error("deleted set mutated on rejected delete")
		}
		if m.VisibleCount() != 1 {
			t.Errorf("visible count = %d, want 1", m.VisibleCount())
		}
	})

	t.Run("repeat delete is a no-op", func(t *testing.T) {
		m := New(3)
		if err := m.Delete(0); err != nil {
			t.Fatal(err)
		}
		if err := m.Delete(0); err != nil {
			t.Errorf("second Delete(0) error = %v", err)
		}
		if m.VisibleCount() != 2 {
			t.Errorf("visible count = %d, want 2", m.VisibleCount())
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		m := New(3)
		if err := m.Delete(7); !errors.Is(err, ErrUnknownPage) {
			t.Errorf("error = %v, want ErrUnknownPage", err)
		}
	})
}

func TestMove(t *testing.T) {
	t.Run("swap with neighbor", func(t *testing.T) {
		m := New(3)
		moved, err := m.MoveUp(1)
		if err != nil || !moved {
			t.Fatalf("MoveUp(1) = %v/%v, want true/nil", moved, err)
		}
		if got := m.VisibleOrder(); !reflect.DeepEqual(got, []types.PageID{1, 0, 2}) {
			t.Errorf("order = %v, want [1 0 2]", got)
		}
	})

	t.Run("boundary is a no-op not an error", func(t *testing.T) {
		m := New(3)
		moved, err := m.MoveUp(0)
		if err != nil {
			t.Fatalf("MoveUp(0) error = %v", err)
		}
		if moved {
			t.Error("MoveUp(0) moved at boundary")
		}
		moved, err = m.MoveDown(2)
		if err != nil || moved {
			t.Errorf("MoveDown(2) = %v/%v, want false/nil", moved, err)
		}
		if m.Modified() {
			t.Error("no-op moves marked model modified")
		}
	})

	t.Run("skips deleted neighbors", func(t *testing.T) {
		m := New(4)
		if err := m.Delete(1); err != nil {
			t.Fatal(err)
		}
		moved, err := m.MoveUp(2)
		if err != nil || !moved {
			t.Fatalf("MoveUp(2) = %v/%v, want true/nil", moved, err)
		}
		// 2 swaps with 0, hopping over the deleted 1.
		if got := m.VisibleOrder(); !reflect.DeepEqual(got, []types.PageID{2, 0, 3}) {
			t.Errorf("order = %v, want [2 0 3]", got)
		}
	})

	t.Run("boundary across deleted pages", func(t *testing.T) {
		m := New(3)
		if err := m.Delete(0); err != nil {
			t.Fatal(err)
		}
		moved, err := m.MoveUp(1)
		if err != nil || moved {
			t.Errorf("MoveUp(1) over deleted leading page = %v/%v, want false/nil", moved, err)
		}
	})

	t.Run("identity stability under reorder", func(t *testing.T) {
		// Reordering permutes positions only; the set of identities is
		// untouched, which is what keeps cache entries valid.
		m := New(5)
		m.MoveDown(0)
		m.MoveDown(0)
		m.MoveUp(4)
		got := map[types.PageID]bool{}
		for _, id := range m.VisibleOrder() {
			got[id] = true
		}
		for id := types.PageID(0); id < 5; id++ {
			if !got[id] {
				t.Errorf("identity %d lost in reorder", id)
			}
		}
	})
}

func TestRotate(t *testing.T) {
	t.Run("accumulates modulo 360", func(t *testing.T) {
		m := New(2)
		steps := []struct {
			delta int
			want  int
		}{
			{90, 90}, {90, 180}, {90, 270}, {90, 0}, {-90, 270},
		}
		for _, s := range steps {
			got, err := m.Rotate(1, s.delta)
			if err != nil {
				t.Fatalf("Rotate error = %v", err)
			}
			if got != s.want {
				t.Errorf("rotation after %+d = %d, want %d", s.delta, got, s.want)
			}
		}
	})

	t.Run("rejects other deltas", func(t *testing.T) {
		m := New(2)
		if _, err := m.Rotate(0, 45); err == nil {
			t.Error("expected error for delta 45")
		}
		if _, err := m.Rotate(0, 180); err == nil {
			t.Error("expected error for delta 180")
		}
	})
}

func TestPlan(t *testing.T) {
	t.Run("display order with rotations", func(t *testing.T) {
		// Display order [B,A,C] = [1,0,2], rotations {A:90}.
		m := New(3)
		if moved, err := m.MoveUp(1); err != nil || !moved {
			t.Fatal("setup move failed")
		}
		if _, err := m.Rotate(0, 90); err != nil {
			t.Fatal(err)
		}

		want := []types.PagePlan{
			{Page: 1, Rotation: 0},
			{Page: 0, Rotation: 90},
			{Page: 2, Rotation: 0},
		}
		if got := m.Plan(); !reflect.DeepEqual(got, want) {
			t.Errorf("plan = %v, want %v", got, want)
		}
	})

	t.Run("skips deleted pages", func(t *testing.T) {
		m := New(3)
		if err := m.Delete(1); err != nil {
			t.Fatal(err)
		}
		want := []types.PagePlan{{Page: 0}, {Page: 2}}
		if got := m.Plan(); !reflect.DeepEqual(got, want) {
			t.Errorf("plan = %v, want %v", got, want)
		}
	})
}

func TestReset(t *testing.T) {
	m := New(3)
	m.Delete(2)
	m.Rotate(0, 90)
	m.MoveDown(0)

	m.Reset(2)
	if m.Modified() {
		t.Error("modified after reset")
	}
	if m.PageCount() != 2 || m.VisibleCount() != 2 {
		t.Errorf("counts = %d/%d, want 2/2", m.PageCount(), m.VisibleCount())
	}
	if got := m.VisibleOrder(); !reflect.DeepEqual(got, []types.PageID{0, 1}) {
		t.Errorf("order = %v, want identity [0 1]", got)
	}
	if m.Rotation(0) != 0 {
		t.Error("rotation survived reset")
	}
}
