package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/slots"
)

func NewPricesHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		midnight := slots.FromTariffMidnight(time.Now())
		series, err := db.GetPriceSeriesFrom(r.Context(), midnight)
		if err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(series); err != nil {
			logger.Error("encoding prices response", slog.Any("error", err))
		}
	}
}
