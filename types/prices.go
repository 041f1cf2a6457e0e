package types

import (
	"context"
	"time"
)

// PriceSample is one 15-minute price quotation. Start < End always holds;
// a fetched series is sorted ascending by Start with no gaps or overlaps.
type PriceSample struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	PriceCtKWh float64   `json:"price_ct_kwh"`
}

// PriceSeries is the contiguous sequence of samples covering the fetched
// horizon (today + tomorrow in the tariff timezone).
type PriceSeries []PriceSample

type PriceProvider interface {
	GetPrices(ctx context.Context) (PriceSeries, error)
}
