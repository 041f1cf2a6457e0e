package analyze

import (
	"testing"
)

func TestMovingAverage(t *testing.T) {

	ma1 := NewMovingAverage(1)
	ma1.Add(1)
	got := ma1.Avg()
	want := 1.0
	if got != want {
		t.Errorf("got %f, wanted %f", got, want)
	}

	ma2 := NewMovingAverage(3)
	ma2.Add(1)
	ma2.Add(2)
	if ma2.Full() {
		t.Error("expected window not to be full after 2 of 3 values")
	}
	ma2.Add(3)
	if !ma2.Full() {
		t.Error("expected window to be full after 3 values")
	}
	got = ma2.Avg()
	want = 2.0
	if got != want {
		t.Errorf("got %f, wanted %f", got, want)
	}
	ma2.Add(4)
	got = ma2.Avg()
	want = 3.0
	if got != want {
		t.Errorf("got %f, wanted %f", got, want)
	}

	ma2.Reset()
	ma2.Add(6)
	got = ma2.Avg()
	want = 6.0
	if got != want {
		t.Errorf("got %f after reset, wanted %f", got, want)
	}
}
