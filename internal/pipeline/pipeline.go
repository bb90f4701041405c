package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nsepulse/nsepulse/internal/categorize"
	"github.com/nsepulse/nsepulse/internal/ingestion"
	"github.com/nsepulse/nsepulse/internal/logger"
	"github.com/nsepulse/nsepulse/internal/report"
	"github.com/nsepulse/nsepulse/internal/storage"
)

// writerCtor is an indirection for creating the result writer; tests can
// override this.
var writerCtor = func(path string) storage.ResultWriter {
	return storage.NewCSVWriter(path)
}

// Inputs names every file the batch consumes and the file it produces.
// BhavcopyFiles is an ordered list: aggregation order (and therefore the
// "last series wins" resolution) follows it.
type Inputs struct {
	SecuritiesFile  string
	HeadersFile     string
	BhavcopyFiles   []string
	UnderlyingsFile string
	VarianceFile    string
	OutputFile      string
}

// Run executes the batch once: load the security master, enrich it from
// the auxiliary sources, categorize, persist, report. The stages run
// strictly in order and each exactly once.
//
// Only the security master is required; a missing auxiliary file degrades
// to documented defaults for the affected fields. Run returns an error
// only for fatal conditions, and always before anything is written.
func Run(ctx context.Context, in Inputs) error {
	runID := uuid.NewString()
	log := logger.L().With().Str("run_id", runID).Logger()
	var q report.Quality

	// LoadPrimary
	master, err := ingestion.LoadSecurities(in.SecuritiesFile, in.HeadersFile)
	if err != nil {
		return fmt.Errorf("load securities: %w", err)
	}
	recs := master.Records
	log.Info().Int("securities", len(recs)).Bool("series_column", master.HasSeries).
		Bool("price_range_column", master.HasPriceRange).Msg("security master loaded")

	// MergeTrade
	agg, tstats, err := ingestion.AggregateTradeValues(ctx, in.BhavcopyFiles)
	if err != nil {
		return fmt.Errorf("aggregate trade values: %w", err)
	}
	q.BhavFilesRead = tstats.FilesRead
	q.BhavFilesMissing = tstats.FilesMissing
	q.BhavRows = tstats.Rows
	q.BhavRowsSkipped = tstats.RowsSkipped
	log.Info().Int("symbols", len(agg)).Int("files_read", tstats.FilesRead).
		Int("files_missing", tstats.FilesMissing).Msg("trade values aggregated")

	// ResolveSeries
	if !master.HasSeries {
		log.Warn().Msg("security master has no series column, backfilling from trade files")
	}
	for i := range recs {
		if recs[i].Series != "" {
			continue
		}
		if a, ok := agg[recs[i].Symbol]; ok && a.Series != "" {
			recs[i].Series = a.Series
		} else {
			q.SeriesDefaulted++
		}
	}

	// ResolveTradeValue
	for i := range recs {
		if a, ok := agg[recs[i].Symbol]; ok {
			recs[i].AvgTradedValue = a.AvgTradedValue
		} else {
			q.TradedValueDefaulted++
		}
	}

	// ResolveBand
	if !master.HasPriceRange {
		log.Warn().Msg("security master has no price range column, band defaults to 0")
		q.BandDefaulted = len(recs)
	} else {
		for i := range recs {
			recs[i].PriceBandPct = ingestion.ParsePriceBand(recs[i].PriceRange)
			if recs[i].PriceBandPct == 0 {
				q.BandDefaulted++
			}
		}
	}

	// ResolveFno
	underlyings := ingestion.LoadUnderlyings(in.UnderlyingsFile)
	q.Underlyings = len(underlyings)
	for i := range recs {
		_, ok := underlyings[recs[i].Symbol]
		recs[i].IsFnoStock = ok
	}

	// MergeVariance
	variances, vstats := ingestion.LoadVariances(in.VarianceFile)
	q.VarianceLines = vstats.Lines
	q.VarianceRecords = vstats.Records
	q.VarianceSkipped = vstats.Skipped
	q.VarianceDuplicates = vstats.Duplicates
	for i := range recs {
		if v, ok := variances[recs[i].Symbol]; ok {
			recs[i].Variance = v
		} else {
			// sentinel from NewSecurity stays in place
			q.VarianceDefaulted++
		}
	}

	// Categorize
	counts := categorize.Assign(recs)
	log.Info().Int("records", len(recs)).Msg("categorized")

	// Persist
	w := writerCtor(in.OutputFile)
	if err := w.WriteSecurities(recs); err != nil {
		return fmt.Errorf("persist output: %w", err)
	}
	log.Info().Str("file", in.OutputFile).Int("rows", len(recs)).Msg("output written")

	// Report
	report.Emit(runID, counts, q)
	return nil
}
