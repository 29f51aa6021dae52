package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scopogger/healthypdf/internal/types"
)

// fakeRenderer counts calls and fails for pages listed in failPages.
type fakeRenderer struct {
	calls     atomic.Int64
	failPages map[types.PageID]bool
	delay     time.Duration
}

func (f *fakeRenderer) Rasterize(ctx context.Context, page types.PageID, zoom float64, rotation int) (*image.RGBA, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failPages[page] {
		return nil, fmt.Errorf("corrupt page %d", page)
	}
	w := int(100 * zoom)
	return image.NewRGBA(image.Rect(0, 0, w, w)), nil
}

func startPool(t *testing.T, r Renderer, workers int) *Pool {
	t.Helper()
	pool, err := NewPool(PoolConfig{Renderer: r, Workers: workers})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go pool.Start(ctx)
	return pool
}

func awaitResult(t *testing.T, pool *Pool) Result {
	t.Helper()
	select {
	case res := <-pool.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for render result")
		return Result{}
	}
}

func TestPool(t *testing.T) {
	t.Run("renders and delivers", func(t *testing.T) {
		pool := startPool(t, &fakeRenderer{}, 1)

		task := NewTask(3, 2.0, 0, 1)
		if err := pool.Submit(task); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}

		res := awaitResult(t, pool)
		if res.Task != task {
			t.Error("result carries wrong task")
		}
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if got := res.Image.Bounds().Dx(); got != 200 {
			t.Errorf("image width = %d, want 200 (zoom applied)", got)
		}
	})

	t.Run("cancelled before run is never delivered", func(t *testing.T) {
		r := &fakeRenderer{}
		pool := startPool(t, r, 1)

		cancelled := NewTask(1, 1.0, 0, 1)
		cancelled.Cancel()
		follower := NewTask(2, 1.0, 0, 2)

		if err := pool.Submit(cancelled); err != nil {
			t.Fatal(err)
		}
		if err := pool.Submit(follower); err != nil {
			t.Fatal(err)
		}

		// Single worker processes in order; the first delivered result must
		// be the follower.
		res := awaitResult(t, pool)
		if res.Task != follower {
			t.Errorf("got result for page %d, want follower page 2", res.Task.Page)
		}
		if r.calls.Load() != 1 {
			t.Errorf("renderer called %d times, want 1 (cancelled task skipped)", r.calls.Load())
		}
	})

	t.Run("render failure is delivered as error", func(t *testing.T) {
		pool := startPool(t, &fakeRenderer{failPages: map[types.PageID]bool{5: true}}, 1)

		if err := pool.Submit(NewTask(5, 1.0, 0, 1)); err != nil {
			t.Fatal(err)
		}
		res := awaitResult(t, pool)
		if !errors.Is(res.Err, ErrRender) {
			t.Errorf("err = %v, want ErrRender", res.Err)
		}
		if res.Image != nil {
			t.Error("failed render delivered an image")
		}

		st := pool.Status()
		if st.Failed != 1 {
			t.Errorf("failed counter = %d, want 1", st.Failed)
		}
	})

	t.Run("queue full", func(t *testing.T) {
		pool, err := NewPool(PoolConfig{Renderer: &fakeRenderer{}, QueueSize: 1})
		if err != nil {
			t.Fatal(err)
		}
		// Pool not started: queue fills immediately.
		if err := pool.Submit(NewTask(1, 1.0, 0, 1)); err != nil {
			t.Fatalf("first Submit() error = %v", err)
		}
		if err := pool.Submit(NewTask(2, 1.0, 0, 2)); !errors.Is(err, ErrQueueFull) {
			t.Errorf("second Submit() error = %v, want ErrQueueFull", err)
		}
	})

	t.Run("requires renderer", func(t *testing.T) {
		if _, err := NewPool(PoolConfig{}); err == nil {
			t.Error("expected error for missing renderer")
		}
	})
}

func TestTaskCancelIdempotent(t *testing.T) {
	task := NewTask(1, 1.0, 90, 7)
	task.Cancel()
	task.Cancel()
	if !task.Cancelled() {
		t.Error("task not cancelled")
	}
	if task.Generation != 7 || task.Rotation != 90 {
		t.Errorf("task fields mangled: %+v", task)
	}
}
