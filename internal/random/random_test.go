package random

import "testing"

func TestBetweenStaysInRange(t *testing.T) {
	t.Parallel()

	src := New(42)
	for i := 0; i < 1000; i++ {
		v := src.Between(70, 99)
		if v < 70 || v > 99 {
			t.Fatalf("value %d out of [70,99]", v)
		}
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a, b := New(7), New(7)
	for i := 0; i < 50; i++ {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("sequence diverged at %d: %d vs %d", i, x, y)
		}
	}
}

func TestIntNNonPositive(t *testing.T) {
	t.Parallel()

	if got := New(1).IntN(0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
