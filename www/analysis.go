package www

import (
	"slices"
	"time"

	"github.com/haukew/stromtarif-go/analyze"
	"github.com/haukew/stromtarif-go/convert"
	"github.com/haukew/stromtarif-go/slice"
	"github.com/haukew/stromtarif-go/types"
)

type windowView struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AvgPriceCtKWh float64   `json:"avg_price_ct_kwh"`
	VsDayAvg      float64   `json:"vs_day_avg"`
}

type sampleView struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	PriceCtKWh float64   `json:"price_ct_kwh"`
	VsDayAvg   float64   `json:"vs_day_avg"`
}

type analysisView struct {
	WindowHours     int          `json:"window_hours"`
	DayAvgCtKWh     float64      `json:"day_avg_ct_kwh"`
	Current         *sampleView  `json:"current"`
	CheapestWindows []windowView `json:"cheapest_windows"`
	TopWindows      []windowView `json:"top_windows"`
}

// buildAnalysis runs the analyzer over the series and shapes the result for
// JSON and template rendering. Returns false when the series is empty.
func buildAnalysis(series types.PriceSeries, now time.Time, windowHours, topN int) (analysisView, bool) {
	dayAvg, err := analyze.DayAverage(series)
	if err != nil {
		return analysisView{}, false
	}

	toView := func(w analyze.Window) windowView {
		return windowView{
			Start:         w.Start,
			End:           w.End,
			AvgPriceCtKWh: w.AvgPriceCtKWh,
			VsDayAvg:      convert.RoundFloat64(w.AvgPriceCtKWh-dayAvg, 4),
		}
	}

	view := analysisView{
		WindowHours:     windowHours,
		DayAvgCtKWh:     convert.RoundFloat64(dayAvg, 4),
		CheapestWindows: slice.Map(analyze.CheapestNonOverlappingWindows(series, windowHours), toView),
		TopWindows:      slice.Map(topWindows(series, windowHours, topN), toView),
	}

	if current := analyze.CurrentSample(series, now); current.IsValid() {
		s := current.Value()
		view.Current = &sampleView{
			Start:      s.Start,
			End:        s.End,
			PriceCtKWh: s.PriceCtKWh,
			VsDayAvg:   convert.RoundFloat64(s.PriceCtKWh-dayAvg, 4),
		}
	}

	return view, true
}

// topWindows is the simpler overlapping variant: all sliding windows sorted
// by price, truncated to n. Overlapping time ranges are expected here.
func topWindows(series types.PriceSeries, windowHours, n int) []analyze.Window {
	windows := analyze.MovingAverageSeries(series, windowHours)
	slices.SortStableFunc(windows, func(a, b analyze.Window) int {
		if a.AvgPriceCtKWh < b.AvgPriceCtKWh {
			return -1
		}
		if a.AvgPriceCtKWh > b.AvgPriceCtKWh {
			return 1
		}
		return 0
	})
	if len(windows) > n {
		windows = windows[:n]
	}
	return windows
}
