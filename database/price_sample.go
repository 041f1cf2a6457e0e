package database

import (
	"context"
	"fmt"
	"time"

	"github.com/haukew/stromtarif-go/convert"
	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/types"
)

type PriceSampleRow struct {
	Slot       slots.Slot
	EndAt      time.Time
	PriceCtKWh float64
}

func (d *Database) SavePriceSamples(ctx context.Context, rows []PriceSampleRow) error {
	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction for price samples: %w", err)
	}

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO price_sample (date, quarter, end_at, price_ct_kwh) VALUES (?, ?, ?, ?)
			ON CONFLICT(date, quarter) DO UPDATE SET end_at = excluded.end_at, price_ct_kwh = excluded.price_ct_kwh`,
			row.Slot.Date,
			row.Slot.Quarter,
			row.EndAt.UTC().Format(time.RFC3339),
			convert.RoundFloat64(row.PriceCtKWh, 4))
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rolling back price samples: %w", rbErr)
			}
			return fmt.Errorf("saving price sample %s: %w", row.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing price samples: %w", err)
	}
	return nil
}

func (d *Database) GetPriceSample(ctx context.Context, slot slots.Slot) (PriceSampleRow, error) {
	row := d.read.QueryRowContext(ctx, `SELECT
		date, quarter, end_at, price_ct_kwh
		FROM price_sample
		WHERE date = ? AND quarter = ?`,
		slot.Date, slot.Quarter)

	var ps PriceSampleRow
	var endAt string
	if err := row.Scan(&ps.Slot.Date, &ps.Slot.Quarter, &endAt, &ps.PriceCtKWh); err != nil {
		return PriceSampleRow{}, fmt.Errorf("scanning price sample row: %w", err)
	}

	var err error
	ps.EndAt, err = time.Parse(time.RFC3339, endAt)
	if err != nil {
		return PriceSampleRow{}, fmt.Errorf("parsing end_at: %w", err)
	}

	return ps, nil
}

// GetPriceSeriesFrom returns the stored samples at and after the given slot
// as an analyzer-ready series, sorted ascending by start.
func (d *Database) GetPriceSeriesFrom(ctx context.Context, slot slots.Slot) (types.PriceSeries, error) {
	rows, err := d.read.QueryContext(ctx, `SELECT
		date, quarter, end_at, price_ct_kwh
		FROM price_sample
		WHERE (date = ? AND quarter >= ?) OR date > ?
		ORDER BY date, quarter ASC`,
		slot.Date, slot.Quarter, slot.Date)
	if err != nil {
		return nil, fmt.Errorf("fetching price series: %w", err)
	}
	defer rows.Close()

	var series types.PriceSeries
	for rows.Next() {
		var s slots.Slot
		var endAt string
		var price float64
		if err := rows.Scan(&s.Date, &s.Quarter, &endAt, &price); err != nil {
			return nil, fmt.Errorf("scanning price sample row: %w", err)
		}
		end, err := time.Parse(time.RFC3339, endAt)
		if err != nil {
			return nil, fmt.Errorf("parsing end_at: %w", err)
		}
		series = append(series, types.PriceSample{
			Start:      s.Time(),
			End:        end,
			PriceCtKWh: price,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading price sample rows: %w", err)
	}

	return series, nil
}

func (d *Database) PurgePriceSamples(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "price_sample", retentionDays)
}
