package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/slots"
)

func NewTableHandler(logger *slog.Logger, db *database.Database, tm *TemplateManager, cnfg config.AppConfigAnalysis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windowHours := intOrDefault(r.URL, "window", cnfg.GetWindowHours())
		if windowHours < 1 {
			http.Error(w, "window must be a positive number of hours", http.StatusBadRequest)
			return
		}

		now := time.Now()
		series, err := db.GetPriceSeriesFrom(r.Context(), slots.FromTariffMidnight(now))
		if err != nil {
			logger.Error("handling table request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		view, ok := buildAnalysis(series, now, windowHours, cnfg.GetTopWindows())
		if !ok {
			http.Error(w, "no price data available", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		if err := tm.ExecuteToWriter("analysis.html", view, &w); err != nil {
			logger.Error("handling table request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
