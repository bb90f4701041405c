package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nsepulse/nsepulse/internal/domain/models"
)

// ResultWriter defines the contract for persisting the final categorized
// dataset.
type ResultWriter interface {
	WriteSecurities(records []models.Security) error
}

// outputHeader fixes the column order of the output file. Stable column
// order plus stable row order (the master file's) makes reruns over
// identical inputs byte-identical.
var outputHeader = []string{
	"SYMBOL",
	"SERIES",
	"PRICE_RANGE",
	"AVG_TRADED_VALUE",
	"PRICE_BAND_PCT",
	"IS_FNO_STOCK",
	"VARIANCE",
	"CATEGORY",
}

type csvWriter struct {
	path string
}

// NewCSVWriter returns a ResultWriter that writes one CSV file at path,
// creating parent directories as needed. No index column is written.
func NewCSVWriter(path string) ResultWriter {
	return &csvWriter{path: path}
}

func (w *csvWriter) WriteSecurities(records []models.Security) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(outputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range records {
		row := []string{
			s.Symbol,
			s.Series,
			s.PriceRange,
			strconv.FormatFloat(s.AvgTradedValue, 'f', -1, 64),
			strconv.FormatFloat(s.PriceBandPct, 'f', -1, 64),
			strconv.FormatBool(s.IsFnoStock),
			strconv.FormatFloat(s.Variance, 'f', -1, 64),
			string(s.Category),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", s.Symbol, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return f.Close()
}
