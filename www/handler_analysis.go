package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/slots"
)

func NewAnalysisHandler(logger *slog.Logger, db *database.Database, cnfg config.AppConfigAnalysis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		windowHours := intOrDefault(r.URL, "window", cnfg.GetWindowHours())
		if windowHours < 1 {
			http.Error(w, "window must be a positive number of hours", http.StatusBadRequest)
			return
		}

		now := time.Now()
		series, err := db.GetPriceSeriesFrom(r.Context(), slots.FromTariffMidnight(now))
		if err != nil {
			logger.Error("handling analysis request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		view, ok := buildAnalysis(series, now, windowHours, cnfg.GetTopWindows())
		if !ok {
			http.Error(w, "no price data available", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			logger.Error("encoding analysis response", slog.Any("error", err))
		}
	}
}
