package pagecache

import (
	"image"
	"testing"

	"github.com/scopogger/healthypdf/internal/types"
)

func testImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func ids(c *Cache) map[types.PageID]bool {
	out := make(map[types.PageID]bool)
	for id := types.PageID(0); id < 100; id++ {
		if c.Contains(id) {
			out[id] = true
		}
	}
	return out
}

func TestCacheBound(t *testing.T) {
	c := New(3, nil)
	for i := 0; i < 20; i++ {
		c.Put(types.PageID(i), testImage())
		if c.Len() > 3 {
			t.Fatalf("cache size %d exceeds max 3 after put %d", c.Len(), i)
		}
	}
}

func TestLRUEviction(t *testing.T) {
	t.Run("oldest evicted first", func(t *testing.T) {
		c := New(3, nil)
		for _, id := range []types.PageID{1, 2, 3, 4} {
			c.Put(id, testImage())
		}
		got := ids(c)
		for _, id := range []types.PageID{2, 3, 4} {
			if !got[id] {
				t.Errorf("expected %d cached, contents %v", id, got)
			}
		}
		if got[1] {
			t.Errorf("expected 1 evicted, contents %v", got)
		}
	})

	t.Run("get refreshes recency", func(t *testing.T) {
		c := New(3, nil)
		c.Put(1, testImage())
		c.Put(2, testImage())
		c.Put(3, testImage())
		if _, ok := c.Get(2); !ok {
			t.Fatal("expected hit for 2")
		}
		c.Put(4, testImage()) // evicts 1 (LRU)
		got := ids(c)
		if got[1] || !got[2] || !got[3] || !got[4] {
			t.Fatalf("after put(4) expected {2,3,4}, contents %v", got)
		}
		c.Put(5, testImage()) // 3 is now LRU, not 2
		got = ids(c)
		if got[3] {
			t.Errorf("expected 3 evicted after refreshing 2, contents %v", got)
		}
		if !got[2] {
			t.Errorf("expected 2 retained after refresh, contents %v", got)
		}
	})

	t.Run("re-put refreshes without replacing", func(t *testing.T) {
		c := New(2, nil)
		first := testImage()
		c.Put(1, first)
		c.Put(2, testImage())
		c.Put(1, testImage()) // refresh only
		c.Put(3, testImage()) // evicts 2, not 1
		got := ids(c)
		if !got[1] || got[2] || !got[3] {
			t.Fatalf("expected {1,3}, contents %v", got)
		}
		if img, _ := c.Get(1); img != first {
			t.Error("re-put replaced the existing image")
		}
	})
}

func TestKeepOnly(t *testing.T) {
	t.Run("exact pruning", func(t *testing.T) {
		c := New(10, nil)
		for _, id := range []types.PageID{1, 2, 3, 4, 5} {
			c.Put(id, testImage())
		}
		keep := map[types.PageID]struct{}{2: {}, 5: {}}
		evicted := c.KeepOnly(keep)
		if evicted != 3 {
			t.Errorf("evicted = %d, want 3", evicted)
		}
		got := ids(c)
		if len(got) != 2 || !got[2] || !got[5] {
			t.Fatalf("expected exactly {2,5}, contents %v", got)
		}
	})

	t.Run("survivors keep relative order", func(t *testing.T) {
		c := New(3, nil)
		c.Put(1, testImage())
		c.Put(2, testImage())
		c.Put(3, testImage())
		c.KeepOnly(map[types.PageID]struct{}{1: {}, 3: {}})
		// 1 is still least-recently-used among survivors.
		c.Put(4, testImage())
		c.Put(5, testImage())
		got := ids(c)
		if got[1] {
			t.Errorf("expected 1 evicted before 3, contents %v", got)
		}
	})

	t.Run("keys absent from cache are ignored", func(t *testing.T) {
		c := New(3, nil)
		c.Put(1, testImage())
		if evicted := c.KeepOnly(map[types.PageID]struct{}{1: {}, 9: {}}); evicted != 0 {
			t.Errorf("evicted = %d, want 0", evicted)
		}
		if c.Len() != 1 {
			t.Errorf("len = %d, want 1", c.Len())
		}
	})
}

func TestMissHasNoSideEffect(t *testing.T) {
	c := New(2, nil)
	c.Put(1, testImage())
	if _, ok := c.Get(7); ok {
		t.Fatal("unexpected hit")
	}
	if c.Len() != 1 {
		t.Errorf("len = %d after miss, want 1", c.Len())
	}
}

func TestContainsDoesNotRefresh(t *testing.T) {
	c := New(2, nil)
	c.Put(1, testImage())
	c.Put(2, testImage())
	if !c.Contains(1) {
		t.Fatal("expected 1 present")
	}
	c.Put(3, testImage()) // 1 must still be LRU despite Contains probe
	if c.Contains(1) {
		t.Error("Contains refreshed recency")
	}
}

func TestEvictAndClear(t *testing.T) {
	c := New(4, nil)
	c.Put(1, testImage())
	c.Put(2, testImage())

	if !c.Evict(1) {
		t.Error("Evict(1) = false, want true")
	}
	if c.Evict(1) {
		t.Error("second Evict(1) = true, want false")
	}
	if c.Contains(1) || !c.Contains(2) {
		t.Error("wrong contents after Evict")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len = %d after Clear, want 0", c.Len())
	}
}

func TestStatusCounters(t *testing.T) {
	c := New(2, nil)
	c.Put(1, testImage())
	c.Get(1)
	c.Get(9)
	c.Put(2, testImage())
	c.Put(3, testImage())

	st := c.Status()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", st.Hits, st.Misses)
	}
	if st.Evictions != 1 {
		t.Errorf("evictions=%d, want 1", st.Evictions)
	}
	if st.Size != 2 || st.MaxSize != 2 {
		t.Errorf("size=%d max=%d, want 2/2", st.Size, st.MaxSize)
	}
}
