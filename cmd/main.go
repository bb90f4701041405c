package main

import (
	"context"
	"flag"
	"time"

	"github.com/nsepulse/nsepulse/config"
	"github.com/nsepulse/nsepulse/internal/ingestion"
	"github.com/nsepulse/nsepulse/internal/logger"
	"github.com/nsepulse/nsepulse/internal/pipeline"
)

// main is the entry point of the nsepulse batch.
//
// The batch reads the security master plus the auxiliary reference files
// (daily trade summaries, F&O underlyings, variance/margin file), assigns
// every security a leverage category, and writes one enriched CSV.
//
// Flags (each overrides its config/env counterpart when provided):
//   - --securities: path to the security master file.
//   - --headers:    optional external header-name list for the master.
//   - --bhav-dir:   directory with the daily trade summary files.
//   - --days:       how many past trading days of trade files to load (1-7).
//   - --underlyings: F&O underlyings file.
//   - --variance:   variance/margin file.
//   - --out:        output CSV path.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	cfg := config.AppConfig
	securities := flag.String("securities", cfg.Input.SecuritiesFile, "Security master file")
	headers := flag.String("headers", cfg.Input.HeadersFile, "Optional header-name list for the master file")
	bhavDir := flag.String("bhav-dir", cfg.Input.BhavcopyDir, "Directory with daily trade summary files")
	days := flag.Int("days", cfg.Input.BhavcopyDays, "Number of past trading days of trade files to load (1-7)")
	underlyings := flag.String("underlyings", cfg.Input.UnderlyingsFile, "F&O underlyings file")
	variance := flag.String("variance", cfg.Input.VarianceFile, "Variance/margin file")
	out := flag.String("out", cfg.Output.File, "Output CSV file")
	flag.Parse()

	if *days < 1 {
		*days = 1
	}
	if *days > 7 {
		*days = 7
	}

	in := pipeline.Inputs{
		SecuritiesFile:  *securities,
		HeadersFile:     *headers,
		BhavcopyFiles:   tradeFiles(cfg, *bhavDir, *days, time.Now()),
		UnderlyingsFile: *underlyings,
		VarianceFile:    *variance,
		OutputFile:      *out,
	}

	logger.L().Info().Msg("running categorization batch")
	if err := pipeline.Run(ctx, in); err != nil {
		logger.L().Fatal().Err(err).Msg("batch failed")
	}
	logger.L().Info().Msg("batch completed successfully")
}

// tradeFiles resolves the ordered daily trade file list: an explicit list
// from config wins; otherwise the expected per-trading-day filenames are
// derived from the directory and the lookback window.
func tradeFiles(cfg config.Config, dir string, days int, now time.Time) []string {
	if len(cfg.Input.BhavcopyFiles) > 0 {
		return cfg.Input.BhavcopyFiles
	}

	extra := make(map[string]struct{}, len(cfg.Input.ExtraHolidays))
	for _, h := range cfg.Input.ExtraHolidays {
		extra[h] = struct{}{}
	}

	dates := ingestion.LastNTradingDays(days, now, extra)
	return ingestion.BhavcopyPaths(dir, dates)
}
