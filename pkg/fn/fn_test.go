package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOut_AllSucceed(t *testing.T) {
	var a, b int
	err := FanOut(context.Background(),
		func(context.Context) error { a = 1; return nil },
		func(context.Context) error { b = 2; return nil },
	)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if a != 1 || b != 2 {
		t.Fatalf("tasks did not write their fields: a=%d b=%d", a, b)
	}
}

func TestFanOut_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Bool

	err := FanOut(context.Background(),
		func(context.Context) error { return boom },
		func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return nil
			}
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !cancelled.Load() {
		t.Fatal("sibling task was not cancelled")
	}
}

func TestFanOut_NoTasks(t *testing.T) {
	if err := FanOut(context.Background()); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestParMap_PreservesOrder(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out, err := ParMap(context.Background(), in, 3, func(_ context.Context, v int) (string, error) {
		return strconv.Itoa(v * 10), nil
	})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	for i, v := range in {
		if out[i] != strconv.Itoa(v*10) {
			t.Fatalf("out[%d] = %s", i, out[i])
		}
	}
}

func TestParMap_BoundsConcurrency(t *testing.T) {
	var cur, peak atomic.Int32
	_, err := ParMap(context.Background(), make([]int, 20), 2, func(_ context.Context, _ int) (int, error) {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		cur.Add(-1)
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency %d exceeds 2 workers", peak.Load())
	}
}

func TestParMap_ErrorDiscardsResults(t *testing.T) {
	out, err := ParMap(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, errors.New("member failed")
		}
		return v, nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Fatalf("partial results must be discarded, got %v", out)
	}
}

func TestParMap_Empty(t *testing.T) {
	out, err := ParMap(context.Background(), []int(nil), 4, func(_ context.Context, v int) (int, error) { return v, nil })
	if err != nil || len(out) != 0 {
		t.Fatalf("got (%v, %v)", out, err)
	}
}

func TestGroupByAndSortedKeys(t *testing.T) {
	g := GroupBy([]string{"apple", "avocado", "banana"}, func(s string) byte { return s[0] })
	if len(g['a']) != 2 || len(g['b']) != 1 {
		t.Fatalf("wrong groups: %v", g)
	}
	keys := SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})
	if keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}

func TestSumByAndMap(t *testing.T) {
	total := SumBy([]float64{1.5, 2.5}, func(v float64) float64 { return v })
	if total != 4 {
		t.Fatalf("SumBy = %v", total)
	}
	lens := Map([]string{"a", "bcd"}, func(s string) int { return len(s) })
	if lens[1] != 3 {
		t.Fatalf("Map = %v", lens)
	}
}

func TestRatioAndPercent(t *testing.T) {
	if Ratio(1, 0) != 0 || Percent(5, 0) != 0 {
		t.Fatal("zero denominator must yield 0")
	}
	if Percent(2, 4) != 50 {
		t.Fatalf("Percent(2,4) = %v", Percent(2, 4))
	}
}

func TestTraced_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Traced("test", func(context.Context) error { return boom })(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := Span(context.Background(), "value", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Span = (%d, %v)", v, err)
	}
}
