// Package analyze derives price summaries from a fetched series of
// quarter-hour tariff quotes. All functions are pure: the series is treated
// as a read-only array and "now" is always passed in by the caller.
package analyze

import (
	"errors"
	"slices"
	"time"

	"github.com/haukew/stromtarif-go/convert"
	"github.com/haukew/stromtarif-go/slice"
	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/types"
	"github.com/haukew/stromtarif-go/types/maybe"
)

// ErrEmptySeries is returned where a non-empty price series is required.
var ErrEmptySeries = errors.New("price series is empty")

// Window is a contiguous run of windowHours*4 samples priced as one
// interval. Index is the offset of its first sample in the source series.
type Window struct {
	Index         int       `json:"-"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AvgPriceCtKWh float64   `json:"avg_price_ct_kwh"`
}

// DayAverage returns the arithmetic mean price over the whole series.
func DayAverage(series types.PriceSeries) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}

	sum := 0.0
	for _, s := range series {
		sum += s.PriceCtKWh
	}
	return sum / float64(len(series)), nil
}

// CurrentSample returns the sample whose interval covers now, if any. The
// series is contiguous, so at most one sample can match.
func CurrentSample(series types.PriceSeries, now time.Time) maybe.Maybe[types.PriceSample] {
	s, ok := slice.Find(series, func(s types.PriceSample) bool {
		return !s.Start.After(now) && now.Before(s.End)
	})
	if !ok {
		return maybe.None[types.PriceSample]()
	}
	return maybe.Some(s)
}

// MovingAverageSeries computes every sliding window's mean price, returning
// all len(series)-windowSize+1 windows in left-to-right order. No overlap
// filtering is done; callers sort and truncate as they see fit.
func MovingAverageSeries(series types.PriceSeries, windowHours int) []Window {
	windowSize := windowHours * slots.QuartersPerHour
	if windowSize <= 0 || len(series) < windowSize {
		return nil
	}

	ma := NewMovingAverage(windowSize)
	windows := make([]Window, 0, len(series)-windowSize+1)
	for i, s := range series {
		ma.Add(s.PriceCtKWh)
		if !ma.Full() {
			continue
		}
		first := i + 1 - windowSize
		windows = append(windows, Window{
			Index:         first,
			Start:         series[first].Start,
			End:           s.End,
			AvgPriceCtKWh: convert.RoundFloat64(ma.Avg(), 4),
		})
	}
	return windows
}

// CheapestNonOverlappingWindows greedily packs windows of windowHours length
// by ascending mean price: every candidate window is priced, candidates are
// taken cheapest-first (ties go to the earlier start) and accepted only if
// none of their samples is already claimed by an accepted window. The result
// is re-sorted chronologically.
//
// The greedy selection is not a globally optimal packing and is kept that
// way on purpose; downstream consumers depend on the exact output.
func CheapestNonOverlappingWindows(series types.PriceSeries, windowHours int) []Window {
	windowSize := windowHours * slots.QuartersPerHour
	if len(series) < windowSize {
		return nil
	}

	candidates := make([]Window, 0, len(series)-windowSize+1)
	for i := 0; i+windowSize <= len(series); i++ {
		sum := 0.0
		for _, s := range series[i : i+windowSize] {
			sum += s.PriceCtKWh
		}
		candidates = append(candidates, Window{
			Index:         i,
			Start:         series[i].Start,
			End:           series[i+windowSize-1].End,
			AvgPriceCtKWh: convert.RoundFloat64(sum/float64(windowSize), 4),
		})
	}

	slices.SortFunc(candidates, func(a, b Window) int {
		if a.AvgPriceCtKWh != b.AvgPriceCtKWh {
			if a.AvgPriceCtKWh < b.AvgPriceCtKWh {
				return -1
			}
			return 1
		}
		return a.Index - b.Index
	})

	used := make([]bool, len(series))
	var selected []Window
	for _, w := range candidates {
		free := true
		for i := w.Index; i < w.Index+windowSize; i++ {
			if used[i] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for i := w.Index; i < w.Index+windowSize; i++ {
			used[i] = true
		}
		selected = append(selected, w)
	}

	slices.SortFunc(selected, func(a, b Window) int { return a.Index - b.Index })
	return selected
}
