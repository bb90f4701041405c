package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nsepulse/nsepulse/internal/domain/models"
	"github.com/nsepulse/nsepulse/internal/logger"
)

const (
	bhavcopyPrefix     = "sec_bhavdata_full_"
	bhavcopySuffix     = ".csv"
	bhavcopyDateLayout = "02012006" // DDMMYYYY
)

// Required bhav-copy columns, each resolvable through a short alias list.
// Headers are upper-cased and trimmed before matching, so the exact
// spelling and padding used by a given day's export does not matter.
var (
	symbolAliases = []string{"SYMBOL"}
	seriesAliases = []string{"SERIES"}
	valueAliases  = []string{"TOTAL_TRADED_VALUE", "TURNOVER_LACS", "TOTTRDVAL"}
)

// TradeStats carries per-source counters for the end-of-run report.
type TradeStats struct {
	FilesRead    int
	FilesMissing int
	Rows         int
	RowsSkipped  int
}

// tradeRow is one usable row of a daily trade file after column resolution.
type tradeRow struct {
	symbol string
	series string
	value  float64
}

// BhavcopyPaths builds the expected file path for each trading day,
// oldest day first so that later files win when series values conflict.
func BhavcopyPaths(dir string, dates []time.Time) []string {
	paths := make([]string, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		name := bhavcopyPrefix + dates[i].Format(bhavcopyDateLayout) + bhavcopySuffix
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// AggregateTradeValues loads every daily trade file that exists and builds
// one per-symbol summary: the arithmetic mean of the traded value across
// all rows for that symbol, and the last non-empty series code seen for it
// in file order.
//
// Missing files are skipped, not errors; a file whose header lacks any of
// the required columns contributes nothing. Files are read concurrently
// (bounded by CPU count) but merged strictly in the order of paths, so the
// result is deterministic for a fixed input list.
func AggregateTradeValues(ctx context.Context, paths []string) (map[string]models.TradeAggregate, TradeStats, error) {
	var stats TradeStats

	maxParallel := len(paths)
	if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	perFile := make([][]tradeRow, len(paths))
	skipped := make([]int, len(paths))
	missing := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, path := range paths {
		idx := i
		p := path
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rows, nSkipped, err := loadTradeFile(p)
			if err != nil {
				if os.IsNotExist(err) {
					missing[idx] = true
					logger.L().Warn().Str("file", filepath.Base(p)).Msg("trade file missing, skipped")
					return nil
				}
				// Unreadable or structurally unusable file: degrade, do not abort.
				missing[idx] = true
				logger.L().Warn().Str("file", filepath.Base(p)).Err(err).Msg("trade file unreadable, skipped")
				return nil
			}
			perFile[idx] = rows
			skipped[idx] = nSkipped
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	type accum struct {
		sum    float64
		n      int
		series string
	}
	acc := make(map[string]*accum)

	// Merge in path order: later files overwrite the series.
	for i := range paths {
		if missing[i] {
			stats.FilesMissing++
			continue
		}
		stats.FilesRead++
		stats.RowsSkipped += skipped[i]
		for _, r := range perFile[i] {
			stats.Rows++
			a, ok := acc[r.symbol]
			if !ok {
				a = &accum{}
				acc[r.symbol] = a
			}
			a.sum += r.value
			a.n++
			if r.series != "" {
				a.series = r.series
			}
		}
	}

	out := make(map[string]models.TradeAggregate, len(acc))
	for sym, a := range acc {
		out[sym] = models.TradeAggregate{
			AvgTradedValue: a.sum / float64(a.n),
			Series:         a.series,
		}
	}
	return out, stats, nil
}

// loadTradeFile reads one daily trade file and returns its usable rows plus
// the count of rows dropped for row-level problems (short rows, non-numeric
// traded values, empty symbols).
func loadTradeFile(path string) ([]tradeRow, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	symCol := resolveColumn(header, symbolAliases)
	serCol := resolveColumn(header, seriesAliases)
	valCol := resolveColumn(header, valueAliases)
	if symCol < 0 || serCol < 0 || valCol < 0 {
		return nil, 0, fmt.Errorf("required columns not found in header %v", header)
	}

	var rows []tradeRow
	skipped := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("read row: %w", err)
		}
		if len(rec) <= symCol || len(rec) <= serCol || len(rec) <= valCol {
			skipped++
			continue
		}
		symbol := strings.TrimSpace(rec[symCol])
		if symbol == "" {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[valCol]), 64)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, tradeRow{
			symbol: symbol,
			series: strings.TrimSpace(rec[serCol]),
			value:  value,
		})
	}
	return rows, skipped, nil
}

// resolveColumn returns the index of the header cell matching the earliest
// alias, or -1. Aliases are tried in priority order; matching is done on
// upper-cased, trimmed cells.
func resolveColumn(header []string, aliases []string) int {
	for _, a := range aliases {
		for i, h := range header {
			if strings.ToUpper(strings.TrimSpace(h)) == a {
				return i
			}
		}
	}
	return -1
}
