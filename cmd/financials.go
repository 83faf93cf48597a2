package main

import (
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/finstmt/internal/config"
	"github.com/sells-group/finstmt/internal/engine"
	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/store"
	"github.com/sells-group/finstmt/pkg/secapi"
)

var financialsCmd = &cobra.Command{
	Use:   "financials TICKER",
	Short: "Print normalized statements for a ticker as JSON",
	Long: `Build canonical income, balance sheet and cash flow statements for one
company from its SEC filings.

Annual statements come from 10-K, 20-F and S-1 filings; quarterly ones from
10-Q and 6-K filings.

Examples:
  # Last five fiscal years
  financials AAPL

  # Last eight quarters of a foreign private issuer, by CIK
  financials TSM --period quarterly --limit 8 --cik 1046179`,
	Args: cobra.ExactArgs(1),
	RunE: runFinancials,
}

func init() {
	f := financialsCmd.Flags()
	f.String("period", string(model.PeriodAnnual), "statement period: annual or quarterly")
	f.Int("limit", engine.DefaultLimit, "number of periods to return")
	f.String("cik", "", "query filings by CIK instead of ticker")
	f.Bool("compact", false, "print JSON without indentation")

	rootCmd.AddCommand(financialsCmd)
}

func runFinancials(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	periodFlag, _ := cmd.Flags().GetString("period")
	limit, _ := cmd.Flags().GetInt("limit")
	cik, _ := cmd.Flags().GetString("cik")
	compact, _ := cmd.Flags().GetBool("compact")

	kind := model.PeriodType(periodFlag)
	if !kind.Valid() {
		return eris.Errorf("financials: --period must be annual or quarterly, got %q", periodFlag)
	}
	if limit < 1 {
		return eris.Errorf("financials: --limit must be positive, got %d", limit)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return eris.Wrap(err, "financials: open store")
	}
	if st != nil {
		defer st.Close() //nolint:errcheck
	}

	eng := engine.New(cfg, sourceWithCache(cfg.Source, st))
	res, err := eng.GetFinancials(ctx, engine.Request{
		Ticker: args[0],
		Period: kind,
		Limit:  limit,
		CIK:    cik,
	})
	if err != nil {
		return eris.Wrap(err, "financials: get financials")
	}

	if st != nil {
		if _, err := st.RecordRun(ctx, kind, res); err != nil {
			zap.L().Warn("financials: record run failed", zap.Error(err))
		}
	}

	zap.L().Debug("financials: done",
		zap.String("ticker", res.Symbol),
		zap.Int("periods", len(res.Periods)),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

// sourceWithCache builds the upstream client and, when a store is open,
// serves XBRL bodies from its filing cache.
func sourceWithCache(sc config.SourceConfig, st store.Store) engine.Source {
	src := newSource(sc)
	if st == nil {
		return src
	}
	return engine.WithFilingCache(src, st)
}

// newSource builds the upstream client from source settings.
func newSource(sc config.SourceConfig) *secapi.Client {
	opts := []secapi.Option{
		secapi.WithBaseURL(sc.BaseURL),
		secapi.WithSplitsBaseURL(sc.SplitsBaseURL),
		secapi.WithSplitsAPIKey(sc.SplitsAPIKey),
		secapi.WithRateLimit(sc.RateLimit),
		secapi.WithUserAgent(sc.UserAgent),
	}
	if sc.TimeoutSecs > 0 {
		opts = append(opts, secapi.WithTimeout(time.Duration(sc.TimeoutSecs)*time.Second))
	}
	return secapi.NewClient(sc.APIKey, opts...)
}
