package history

import "testing"

func TestNewIsZeroFilled(t *testing.T) {
	b := New(0)
	if b.Len() != DefaultLength {
		t.Fatalf("expected length %d, got %d", DefaultLength, b.Len())
	}
	for i, v := range b.Values() {
		if v != 0 {
			t.Fatalf("slot %d: expected 0, got %f", i, v)
		}
	}
}

func TestPushKeepsLengthAndOrder(t *testing.T) {
	b := New(4)
	for i := 1; i <= 6; i++ {
		b.Push(float64(i))
		if b.Len() != 4 || len(b.Values()) != 4 {
			t.Fatalf("after %d pushes length changed to %d", i, len(b.Values()))
		}
	}

	got := b.Values()
	want := []float64{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d]: expected %f, got %f", i, want[i], got[i])
		}
	}
	if b.Last() != 6 {
		t.Errorf("Last(): expected 6, got %f", b.Last())
	}
	if b.Max() != 6 {
		t.Errorf("Max(): expected 6, got %f", b.Max())
	}
}

func TestPartialFillIsOldestFirst(t *testing.T) {
	b := New(3)
	b.Push(7)

	got := b.Values()
	want := []float64{0, 0, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d]: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestValuesIsACopy(t *testing.T) {
	b := New(2)
	b.Push(1)
	v := b.Values()
	v[1] = 99
	if b.Last() != 1 {
		t.Errorf("mutating Values() leaked into the buffer: %f", b.Last())
	}
}

func TestLengthAcrossManyCycles(t *testing.T) {
	b := New(DefaultLength)
	for i := 0; i < 1000; i++ {
		b.Push(float64(i % 7))
		if b.Len() != DefaultLength {
			t.Fatalf("cycle %d: length %d", i, b.Len())
		}
	}
}
