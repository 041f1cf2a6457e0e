package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/haukew/stromtarif-go/types"
)

var seriesStart = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func makeSeries(prices []float64) types.PriceSeries {
	series := make(types.PriceSeries, len(prices))
	for i, p := range prices {
		start := seriesStart.Add(time.Duration(i) * 15 * time.Minute)
		series[i] = types.PriceSample{
			Start:      start,
			End:        start.Add(15 * time.Minute),
			PriceCtKWh: p,
		}
	}
	return series
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}

func TestDayAverage(t *testing.T) {
	avg, err := DayAverage(makeSeries([]float64{10, 20, 30, 40}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(avg, 25.0) {
		t.Errorf("got %f, wanted 25.0", avg)
	}
}

func TestDayAverageOrderIndependent(t *testing.T) {
	prices := []float64{12.5, 9.25, 30.1, 4.75, 18.0}
	forward := makeSeries(prices)

	reversed := make([]float64, len(prices))
	for i, p := range prices {
		reversed[len(prices)-1-i] = p
	}
	backward := makeSeries(reversed)

	a, err := DayAverage(forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := DayAverage(backward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(a, b) {
		t.Errorf("average depends on sample order: %f vs %f", a, b)
	}
}

func TestDayAverageEmptySeries(t *testing.T) {
	if _, err := DayAverage(nil); err != ErrEmptySeries {
		t.Errorf("got %v, wanted ErrEmptySeries", err)
	}
}

func TestCurrentSample(t *testing.T) {
	series := makeSeries([]float64{1, 2, 3, 4})

	tests := []struct {
		name      string
		now       time.Time
		wantPrice float64
		wantSome  bool
	}{
		{
			name:      "at start of a sample",
			now:       seriesStart.Add(15 * time.Minute),
			wantPrice: 2,
			wantSome:  true,
		},
		{
			name:      "inside a sample",
			now:       seriesStart.Add(37 * time.Minute),
			wantPrice: 3,
			wantSome:  true,
		},
		{
			name:     "before the horizon",
			now:      seriesStart.Add(-time.Second),
			wantSome: false,
		},
		{
			name:     "at end of the horizon",
			now:      seriesStart.Add(60 * time.Minute),
			wantSome: false,
		},
		{
			name:     "after the horizon",
			now:      seriesStart.Add(2 * time.Hour),
			wantSome: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentSample(series, tt.now)
			if got.IsValid() != tt.wantSome {
				t.Fatalf("IsValid() = %v, wanted %v", got.IsValid(), tt.wantSome)
			}
			if tt.wantSome && !almostEqual(got.Value().PriceCtKWh, tt.wantPrice) {
				t.Errorf("got price %f, wanted %f", got.Value().PriceCtKWh, tt.wantPrice)
			}
		})
	}
}

func TestCheapestWindowsPicksCheapHours(t *testing.T) {
	// 8 quarter-hour samples, the cheap half at the end; one 1h window fits
	// without overlap and must cover indices 4-7.
	series := makeSeries([]float64{10, 10, 10, 10, 1, 1, 1, 1})

	windows := CheapestNonOverlappingWindows(series, 1)
	if len(windows) != 2 {
		t.Fatalf("got %d windows, wanted 2", len(windows))
	}

	cheapest := windows[1]
	if cheapest.Index != 4 {
		t.Errorf("got cheapest window at index %d, wanted 4", cheapest.Index)
	}
	if !almostEqual(cheapest.AvgPriceCtKWh, 1.0) {
		t.Errorf("got avg %f, wanted 1.0", cheapest.AvgPriceCtKWh)
	}
	if !cheapest.Start.Equal(seriesStart.Add(time.Hour)) {
		t.Errorf("got start %v, wanted %v", cheapest.Start, seriesStart.Add(time.Hour))
	}
	if !cheapest.End.Equal(seriesStart.Add(2 * time.Hour)) {
		t.Errorf("got end %v, wanted %v", cheapest.End, seriesStart.Add(2*time.Hour))
	}
}

func TestCheapestWindowsTooFewSamples(t *testing.T) {
	series := makeSeries([]float64{1, 2, 3, 4})
	if windows := CheapestNonOverlappingWindows(series, 2); len(windows) != 0 {
		t.Errorf("got %d windows, wanted none", len(windows))
	}
}

func TestCheapestWindowsSingleFullWindow(t *testing.T) {
	series := makeSeries([]float64{5, 3, 5, 3})
	windows := CheapestNonOverlappingWindows(series, 1)
	if len(windows) != 1 {
		t.Fatalf("got %d windows, wanted 1", len(windows))
	}
	if windows[0].Index != 0 {
		t.Errorf("got index %d, wanted 0", windows[0].Index)
	}
	if !almostEqual(windows[0].AvgPriceCtKWh, 4.0) {
		t.Errorf("got avg %f, wanted 4.0", windows[0].AvgPriceCtKWh)
	}
}

func TestCheapestWindowsAreDisjoint(t *testing.T) {
	series := makeSeries([]float64{
		7.1, 3.3, 9.9, 2.2, 5.5, 5.5, 2.2, 9.9,
		3.3, 7.1, 1.1, 8.8, 4.4, 6.6, 1.1, 8.8,
	})

	windows := CheapestNonOverlappingWindows(series, 1)
	if len(windows) == 0 {
		t.Fatal("expected at least one window")
	}

	used := make(map[int]bool)
	for _, w := range windows {
		for i := w.Index; i < w.Index+4; i++ {
			if used[i] {
				t.Fatalf("sample index %d used by two windows", i)
			}
			used[i] = true
		}
	}
}

func TestCheapestWindowsChronologicalOrder(t *testing.T) {
	series := makeSeries([]float64{
		9, 9, 9, 9, 1, 1, 1, 1,
		5, 5, 5, 5, 2, 2, 2, 2,
	})

	windows := CheapestNonOverlappingWindows(series, 1)
	for i := 1; i < len(windows); i++ {
		if !windows[i-1].Start.Before(windows[i].Start) {
			t.Errorf("windows not in chronological order at position %d", i)
		}
	}
}

func TestCheapestWindowsDeterministic(t *testing.T) {
	// All prices equal, every candidate ties; the tie-break on earliest
	// start must make repeated runs identical.
	series := makeSeries([]float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2})

	first := CheapestNonOverlappingWindows(series, 1)
	second := CheapestNonOverlappingWindows(series, 1)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("got %d and %d windows, wanted 3 each", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run mismatch at position %d: %v vs %v", i, first[i], second[i])
		}
	}
	for i, w := range first {
		if w.Index != i*4 {
			t.Errorf("got index %d at position %d, wanted %d", w.Index, i, i*4)
		}
	}
}

func TestMovingAverageSeries(t *testing.T) {
	series := makeSeries([]float64{1, 2, 3, 4, 5, 6})

	windows := MovingAverageSeries(series, 1)
	if len(windows) != 3 {
		t.Fatalf("got %d windows, wanted 3", len(windows))
	}

	wantAvgs := []float64{2.5, 3.5, 4.5}
	for i, w := range windows {
		if w.Index != i {
			t.Errorf("got index %d at position %d", w.Index, i)
		}
		if !almostEqual(w.AvgPriceCtKWh, wantAvgs[i]) {
			t.Errorf("got avg %f at position %d, wanted %f", w.AvgPriceCtKWh, i, wantAvgs[i])
		}
	}
}

func TestMovingAverageSeriesTooFewSamples(t *testing.T) {
	if windows := MovingAverageSeries(makeSeries([]float64{1, 2}), 1); windows != nil {
		t.Errorf("got %v, wanted nil", windows)
	}
}
