package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukew/stromtarif-go/broker"
	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/dynatarif"
	"github.com/haukew/stromtarif-go/logging"
	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/task"
	"github.com/haukew/stromtarif-go/types"
	"github.com/haukew/stromtarif-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := slots.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("stromtarif is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	password, err := cnfg.Dynatarif.ReadPassword()
	if err != nil {
		panic(fmt.Sprintf("failed to read tariff API password: %v", err))
	}

	providers := []types.PriceProvider{
		dynatarif.New(cnfg.Dynatarif.GetBaseUrl(), cnfg.Dynatarif.Email, password),
	}

	var publisher *broker.Publisher
	if cnfg.Mqtt.Enabled() {
		publisher = broker.New(cnfg.Mqtt)
		if err := publisher.Connect(); err != nil {
			panic(fmt.Sprintf("MQTT connection error: %v", err))
		}
		defer publisher.Disconnect()
	} else {
		logger.Info("no MQTT broker configured, publishing disabled")
	}

	var server *www.Server
	onPricesUpdated := func(series types.PriceSeries) {
		if publisher != nil {
			publisher.PublishAnalysis(series, cnfg.Analysis.GetWindowHours(), time.Now())
		}
		if server != nil {
			server.BroadcastAnalysis(series)
		}
	}

	tasks := task.NewTasks(db, providers, onPricesUpdated, cnfg)
	tasks.Run()
	defer tasks.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server = www.StartServer(db, cnfg, Version)
	server.Run(ctx)
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
