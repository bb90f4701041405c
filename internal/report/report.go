package report

import (
	"github.com/nsepulse/nsepulse/internal/domain/models"
	"github.com/nsepulse/nsepulse/internal/logger"
)

// Quality accumulates the data-quality counters of one run: how much of
// each source was actually read, how many rows were dropped at row level,
// and how many derived fields ended up with their documented default.
// Purely observational; nothing here feeds back into the output file.
type Quality struct {
	BhavFilesRead      int
	BhavFilesMissing   int
	BhavRows           int
	BhavRowsSkipped    int
	VarianceLines      int
	VarianceRecords    int
	VarianceSkipped    int
	VarianceDuplicates int
	Underlyings        int

	SeriesDefaulted      int
	TradedValueDefaulted int
	BandDefaulted        int
	VarianceDefaulted    int
}

// Assumptions are the fixed processing assumptions surfaced at the end of
// every run (also documented in the README).
var Assumptions = [5]string{
	"symbols are trimmed and joined case-sensitively across all sources",
	"duplicate variance records resolve to the first occurrence",
	"missing numerics default to 0 (traded value, band) and 9999 (variance) before categorization",
	"traded values are taken in the source file's unit without conversion",
	"auxiliary files are optional; only the security master is required",
}

// Emit writes the end-of-run summary: category counts, default-fill
// counts, source counters and the processing assumptions.
func Emit(runID string, counts map[models.Category]int, q Quality) {
	logger.L().Info().
		Str("run_id", runID).
		Int("category_5x", counts[models.CategoryFiveX]).
		Int("category_3x", counts[models.CategoryThreeX]).
		Int("category_only_delivery", counts[models.CategoryDelivery]).
		Msg("categories assigned")

	logger.L().Info().
		Str("run_id", runID).
		Int("series_defaulted", q.SeriesDefaulted).
		Int("traded_value_defaulted", q.TradedValueDefaulted).
		Int("band_defaulted", q.BandDefaulted).
		Int("variance_defaulted", q.VarianceDefaulted).
		Msg("defaulted fields")

	logger.L().Info().
		Str("run_id", runID).
		Int("trade_files_read", q.BhavFilesRead).
		Int("trade_files_missing", q.BhavFilesMissing).
		Int("trade_rows", q.BhavRows).
		Int("trade_rows_skipped", q.BhavRowsSkipped).
		Int("variance_lines", q.VarianceLines).
		Int("variance_records", q.VarianceRecords).
		Int("variance_skipped", q.VarianceSkipped).
		Int("variance_duplicates", q.VarianceDuplicates).
		Int("underlyings", q.Underlyings).
		Msg("source quality")

	for i, a := range Assumptions {
		logger.L().Info().Str("run_id", runID).Int("n", i+1).Str("assumption", a).Msg("processing assumption")
	}
}
