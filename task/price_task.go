package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/types"
)

// OnPricesUpdated is invoked after a successful fetch with the freshly
// stored series; the daemon hangs MQTT publishing and websocket pushes on it.
type OnPricesUpdated func(series types.PriceSeries)

func NewPriceTask(logger *slog.Logger, db *database.Database, providers []types.PriceProvider, onUpdated OnPricesUpdated) func() {
	if len(providers) == 0 {
		panic("no price providers")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if needImmediatePriceUpdate(ctx, db) {
		logger.Info("need an immediate update of price samples")
		runPriceTask(logger, db, providers, onUpdated)
	} else {
		logger.Debug("no need for immediate update of price samples")
	}

	return func() { runPriceTask(logger, db, providers, onUpdated) }
}

func runPriceTask(logger *slog.Logger, db *database.Database, providers []types.PriceProvider, onUpdated OnPricesUpdated) {
	logger.Debug("running price task...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var series types.PriceSeries
	for _, provider := range providers {
		fetched, err := provider.GetPrices(ctx)
		if err != nil {
			logger.Error("price task error, fetching prices", slog.Any("error", err))
			continue
		}
		series = fetched
		break
	}

	if len(series) == 0 {
		logger.Error("price task error, no prices fetched")
		return
	}

	rows := make([]database.PriceSampleRow, len(series))
	for i, s := range series {
		logger.Debug("price sample",
			slog.String("slot", slots.FromTime(s.Start).String()),
			slog.Float64("priceCtKWh", s.PriceCtKWh))
		rows[i] = database.PriceSampleRow{
			Slot:       slots.FromTime(s.Start),
			EndAt:      s.End,
			PriceCtKWh: s.PriceCtKWh,
		}
	}

	if err := db.SavePriceSamples(ctx, rows); err != nil {
		logger.Error("price task error", slog.Any("error", err))
		return
	}

	logger.Info("price task done", slog.Int("noOfSamplesUpdated", len(rows)))

	if onUpdated != nil {
		onUpdated(series)
	}
}

// Fetch right away when the stored horizon does not reach at least 12 hours
// ahead, e.g. after downtime or on first start.
func needImmediatePriceUpdate(ctx context.Context, db *database.Database) bool {
	slot := slots.FromNow().Add(12 * slots.QuartersPerHour)
	if _, err := db.GetPriceSample(ctx, slot); err != nil {
		return true
	}
	return false
}
