package cache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetOrCreateBuildsOnce(t *testing.T) {
	c := New[int, string](0)
	var builds atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := c.GetOrCreate(1, func() string {
				builds.Add(1)
				return "one"
			})
			if v != "one" {
				t.Errorf("GetOrCreate = %q", v)
			}
		}()
	}
	wg.Wait()
	if builds.Load() != 1 {
		t.Errorf("create ran %d times, want 1", builds.Load())
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string, int](0)
	c.GetOrCreate("a", func() int { return 1 })
	c.GetOrCreate("b", func() int { return 2 })
	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete should report presence once")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.GetOrCreate(i, func() int { return i })
	}
	// Touch 0 so 1 becomes the oldest.
	c.Get(0)
	c.GetOrCreate(4, func() int { return 4 })

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after eviction", c.Len())
	}
	if _, ok := c.Get(0); !ok {
		t.Error("recently used key evicted")
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest key kept")
	}
	if _, ok := c.Get(4); !ok {
		t.Error("new key evicted")
	}
}
