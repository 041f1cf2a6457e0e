package task

import (
	"context"
	"log/slog"

	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/types"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PriceTask       func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	priceProviders []types.PriceProvider,
	onPricesUpdated OnPricesUpdated,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		PriceTask:       NewPriceTask(logger.With(slog.String("task", "price")), db, priceProviders, onPricesUpdated),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Dynatarif.GetRunAt(), t.PriceTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
