package mathx

import "testing"

func TestSeedDeterministic(t *testing.T) {
	a1, b1 := Seed(7, 99)
	a2, b2 := Seed(7, 99)
	if a1 != a2 || b1 != b2 {
		t.Fatal("Seed is not deterministic")
	}
	if c, d := Seed(7, 100); c == a1 && d == b1 {
		t.Error("neighbouring streams share a seed")
	}
	if c, d := Seed(8, 99); c == a1 && d == b1 {
		t.Error("different worlds share a seed")
	}
}

func TestNewRandStreams(t *testing.T) {
	r1, r2 := NewRand(1, 2), NewRand(1, 2)
	for i := 0; i < 100; i++ {
		if x, y := r1.Uint64(), r2.Uint64(); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}
