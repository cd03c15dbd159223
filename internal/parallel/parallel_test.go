package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor_CoversRangeOnce(t *testing.T) {
	for _, tc := range []struct {
		name     string
		n, grain int
	}{
		{"empty", 0, 16},
		{"inline", 10, 16},
		{"exact grain", 64, 16},
		{"uneven", 1003, 7},
		{"grain one", 257, 1},
		{"zero grain", 50, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hits := make([]int32, tc.n)
			For(tc.n, tc.grain, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

// TestFor_Deterministic checks that partitioning does not change results.
func TestFor_Deterministic(t *testing.T) {
	const n = 10000
	serial := make([]float64, n)
	for i := range serial {
		serial[i] = float64(i) * 0.5
	}
	par := make([]float64, n)
	For(n, 128, func(start, end int) {
		for i := start; i < end; i++ {
			par[i] = float64(i) * 0.5
		}
	})
	for i := range serial {
		if serial[i] != par[i] {
			t.Fatalf("index %d: %v != %v", i, par[i], serial[i])
		}
	}
}

func TestFor_Nested(t *testing.T) {
	var counter atomic.Int64
	For(64, 1, func(start, end int) {
		for range end - start {
			For(100, 10, func(s, e int) { counter.Add(int64(e - s)) })
		}
	})
	if counter.Load() != 6400 {
		t.Errorf("counter = %d, want 6400", counter.Load())
	}
}

func TestForEach(t *testing.T) {
	var counter atomic.Int64
	if err := ForEach(20, func(i int) error {
		counter.Add(int64(i))
		return nil
	}); err != nil {
		t.Fatalf("ForEach() = %v", err)
	}
	if counter.Load() != 190 {
		t.Errorf("sum = %d, want 190", counter.Load())
	}
}

func TestForEach_SingleInline(t *testing.T) {
	calls := 0
	_ = ForEach(1, func(i int) error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestForEach_Error(t *testing.T) {
	errBoom := errors.New("boom")
	err := ForEach(10, func(i int) error {
		if i == 3 {
			return errBoom
		}
		return nil
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("ForEach() = %v, want %v", err, errBoom)
	}
}

func TestSetDefaultWorkers(t *testing.T) {
	t.Cleanup(func() { SetDefaultWorkers(0) })
	SetDefaultWorkers(3)
	if got := Default().Workers(); got != 3 {
		t.Errorf("Default().Workers() = %d, want 3", got)
	}
}
