package cache

import (
	"errors"
	"slices"
	"testing"
)

func TestCacheLRUEviction(t *testing.T) {
	var evicted []int
	c := New[int, string](2, func(k int, _ string) { evicted = append(evicted, k) })

	c.Set(1, "a")
	c.Set(2, "b")
	c.Get(1) // 2 is now least recently used
	c.Set(3, "c")

	if !slices.Equal(evicted, []int{2}) {
		t.Fatalf("evicted = %v, want [2]", evicted)
	}
	if _, ok := c.Get(2); ok {
		t.Error("evicted key still present")
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Errorf("Get(1) = (%q, %v)", v, ok)
	}
	if c.Len() != 2 || c.listLen() != 2 {
		t.Errorf("Len() = %d, list %d, want 2", c.Len(), c.listLen())
	}
}

func TestCacheReplaceEvictsOld(t *testing.T) {
	var evicted []string
	c := New[int, string](4, func(_ int, v string) { evicted = append(evicted, v) })
	c.Set(1, "old")
	c.Set(1, "new")
	if !slices.Equal(evicted, []string{"old"}) {
		t.Errorf("evicted = %v, want [old]", evicted)
	}
	if v, _ := c.Get(1); v != "new" {
		t.Errorf("Get(1) = %q", v)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	var evicted []int
	c := New[int, int](8, func(k, _ int) { evicted = append(evicted, k) })
	for i := range 3 {
		c.Set(i, i)
	}
	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete() should succeed once")
	}
	c.Get(0)
	c.Clear()
	if !slices.Equal(evicted, []int{1, 2, 0}) {
		t.Errorf("evicted = %v, want [1 2 0]", evicted)
	}
	if c.Len() != 0 || c.listLen() != 0 {
		t.Errorf("Len() = %d, list %d after Clear", c.Len(), c.listLen())
	}
	c.Set(5, 5)
	if v, ok := c.Get(5); !ok || v != 5 {
		t.Errorf("Get(5) after Clear = (%d, %v)", v, ok)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](0, nil)
	if c.Capacity() != 1 {
		t.Errorf("Capacity() = %d, want clamp to 1", c.Capacity())
	}

	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}
	for range 3 {
		if v, err := c.GetOrCreate("k", create); err != nil || v != 42 {
			t.Fatalf("GetOrCreate() = (%d, %v)", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBoom := errors.New("boom")
	if _, err := c.GetOrCreate("x", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Errorf("error = %v", err)
	}
	if _, ok := c.Get("x"); ok {
		t.Error("failed create was stored")
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 3 {
		t.Errorf("Stats() = %+v, want 2 hits 3 misses", st)
	}
}

// listLen walks the recency ring.
func (c *Cache[K, V]) listLen() int {
	n := 0
	for e := c.sentinel.next; e != &c.sentinel; e = e.next {
		n++
	}
	return n
}
