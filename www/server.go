package www

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/haukew/stromtarif-go/config"
	"github.com/haukew/stromtarif-go/database"
	"github.com/haukew/stromtarif-go/types"
)

type Server struct {
	logger       *slog.Logger
	config       config.AppConfigApi
	analysisCnfg config.AppConfigAnalysis
	db           *database.Database
	hub          *Hub
	tm           *TemplateManager
}

//go:embed static
var embeddedStaticDir embed.FS

func StartServer(db *database.Database, cnfg *config.AppConfig, version string) *Server {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		logger.Error("template manager initialization error", slog.Any("error", err))
	}

	s := &Server{
		logger:       logger,
		config:       cnfg.Api,
		analysisCnfg: cnfg.Analysis,
		db:           db,
		hub:          NewHub(logger),
		tm:           tm,
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	http.Handle("/", staticFilesHandler(cnfg.Api.WwwDir))

	http.Handle("/prices", logReqMW(NewPricesHandler(
		logger.With(slog.String("handler", "prices")),
		s.db)))

	http.Handle("/analysis", logReqMW(NewAnalysisHandler(
		logger.With(slog.String("handler", "analysis")),
		s.db,
		s.analysisCnfg)))

	http.Handle("/table", logReqMW(NewTableHandler(
		logger.With(slog.String("handler", "table")),
		s.db,
		s.tm,
		s.analysisCnfg)))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	logger.Info("server initialized", slog.String("version", version))

	return s
}

// BroadcastAnalysis pushes a fresh analysis to all websocket clients; called
// by the daemon after every successful price fetch.
func (s *Server) BroadcastAnalysis(series types.PriceSeries) {
	view, ok := buildAnalysis(series, time.Now(), s.analysisCnfg.GetWindowHours(), s.analysisCnfg.GetTopWindows())
	if !ok {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("marshaling analysis broadcast", slog.Any("error", err))
		return
	}
	s.hub.Broadcast <- data
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return
		}
	}
}

func staticFilesHandler(wwwDir *string) http.Handler {
	if wwwDir != nil {
		return http.FileServer(http.Dir(filepath.Join(*wwwDir, "static")))
	}

	sub, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Fatalf("embedded static files missing: %v", err)
	}
	return http.FileServer(http.FS(sub))
}
