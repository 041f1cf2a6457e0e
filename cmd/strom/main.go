// Command strom is the one-shot CLI: fetch today's and tomorrow's tariff
// quotes, print the price table, the day average and the cheapest
// non-overlapping windows, then exit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/haukew/stromtarif-go/analyze"
	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/dynatarif"
	"github.com/haukew/stromtarif-go/slots"
	"github.com/haukew/stromtarif-go/types"
	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	windowHours := flag.Int("window", 3, "moving average window in hours")
	rawJson := flag.Bool("json", false, "output raw samples as JSON instead of the table")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))

	if *windowHours < 1 {
		fmt.Fprintln(os.Stderr, "window must be a positive number of hours")
		flag.Usage()
		os.Exit(2)
	}

	cnfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	password, err := cnfg.Dynatarif.ReadPassword()
	if err != nil {
		logger.Error("failed to read tariff API password", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := dynatarif.New(cnfg.Dynatarif.GetBaseUrl(), cnfg.Dynatarif.Email, password)

	logger.Info("logging in...")
	if err := client.Login(ctx); err != nil {
		logger.Error("login failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("fetching prices...")
	series, err := client.GetPrices(ctx)
	if err != nil {
		logger.Error("fetching prices failed", slog.Any("error", err))
		os.Exit(1)
	}

	if len(series) == 0 {
		logger.Error("no price data received")
		os.Exit(1)
	}

	logger.Info("fetched price periods", slog.Int("count", len(series)))

	if *rawJson {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(series); err != nil {
			logger.Error("encoding samples", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	printReport(series, *windowHours, time.Now())
}

func printReport(series types.PriceSeries, windowHours int, now time.Time) {
	dayAvg, err := analyze.DayAverage(series)
	if err != nil {
		// Unreachable, the caller exits on an empty series
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	current := analyze.CurrentSample(series, now)

	fmt.Printf("\n%16s  %8s  %7s\n", "Time", "ct/kWh", "vs avg")
	fmt.Println("------------------------------------")
	for _, s := range series {
		marker := ""
		if current.IsValid() && s.Start.Equal(current.Value().Start) {
			marker = " <--"
		}
		fmt.Printf("%s  %8.2f  %+7.2f%s\n",
			formatTime(s.Start), s.PriceCtKWh, s.PriceCtKWh-dayAvg, marker)
	}

	fmt.Printf("\nDay average: %.2f ct/kWh\n", dayAvg)

	windows := analyze.CheapestNonOverlappingWindows(series, windowHours)
	if len(windows) > 0 {
		fmt.Printf("\n%dh cheapest non-overlapping windows:\n", windowHours)
		fmt.Printf("%16s — %5s  %10s  %10s\n", "Start", "End", "avg ct/kWh", "vs day avg")
		fmt.Println("--------------------------------------------------")
		for _, w := range windows {
			fmt.Printf("%s — %s  %10.2f  %+10.2f\n",
				formatTime(w.Start),
				slots.InTariffTime(w.End).Format("15:04"),
				w.AvgPriceCtKWh,
				w.AvgPriceCtKWh-dayAvg)
		}
	}

	if current.IsValid() {
		s := current.Value()
		fmt.Printf("\nNow (%s): %.2f ct/kWh (%+.2f vs avg)\n",
			slots.InTariffTime(now).Format("15:04"), s.PriceCtKWh, s.PriceCtKWh-dayAvg)
	}
}

func formatTime(t time.Time) string {
	return slots.InTariffTime(t).Format("2006-01-02 15:04")
}
