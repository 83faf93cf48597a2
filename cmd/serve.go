package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/finstmt/internal/engine"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/store"
)

var servePort int

// statementBuilder is the engine surface the HTTP API needs.
type statementBuilder interface {
	GetFinancials(ctx context.Context, req engine.Request) (*model.FinancialsResult, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve normalized statements over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "serve: open store")
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		eng := engine.New(cfg, sourceWithCache(cfg.Source, st))
		router := buildRouter(eng, st, cfg.Server.AllowedOrigins)

		return startServer(ctx, router, resolvePort(servePort, cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// buildRouter wires the API routes. runs may be nil, in which case the run
// log endpoint reports 404.
func buildRouter(eng statementBuilder, runs store.Store, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/financials/{ticker}", financialsHandler(eng, runs))
		r.Get("/runs", runsHandler(runs))
	})
	return r
}

func financialsHandler(eng statementBuilder, runs store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		kind := model.PeriodType(q.Get("period"))
		if kind == "" {
			kind = model.PeriodAnnual
		}
		if !kind.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("period must be annual or quarterly, got %q", kind))
			return
		}
		limit, ok := parseLimit(q.Get("limit"), engine.DefaultLimit)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		res, err := eng.GetFinancials(r.Context(), engine.Request{
			Ticker: chi.URLParam(r, "ticker"),
			Period: kind,
			Limit:  limit,
			CIK:    q.Get("cik"),
		})
		if err != nil {
			zap.L().Error("serve: get financials failed",
				zap.String("ticker", chi.URLParam(r, "ticker")),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "failed to build statements")
			return
		}

		if runs != nil {
			if _, err := runs.RecordRun(r.Context(), kind, res); err != nil {
				zap.L().Warn("serve: record run failed", zap.String("ticker", res.Symbol), zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func runsHandler(runs store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runs == nil {
			writeError(w, http.StatusNotFound, "run log is not configured")
			return
		}
		limit, ok := parseLimit(r.URL.Query().Get("limit"), 0)
		if !ok {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		list, err := runs.ListRuns(r.Context(), store.RunFilter{
			Ticker: strings.TrimSpace(r.URL.Query().Get("ticker")),
			Limit:  limit,
		})
		if err != nil {
			zap.L().Error("serve: list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list runs")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseLimit(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// startServer listens on port until ctx is done, then shuts down.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}
