package ingestion

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nsepulse/nsepulse/internal/logger"
)

// The variance file is record-typed: each line starts with a numeric type
// code, and only one record type carries per-security variance data. The
// other types (headers, totals, trailer) have different field counts, so
// the file is classified line by line rather than parsed as a CSV table.
const (
	varianceRecordType = "20"
	varianceSymbolIdx  = 1
	varianceValueIdx   = 4
)

// VarianceStats carries per-source counters for the end-of-run report.
type VarianceStats struct {
	Lines      int
	Records    int
	Skipped    int
	Duplicates int
}

// LoadVariances parses the variance file and returns a symbol-to-variance
// mapping built from the eligible record lines.
//
// Lines whose type code is not "20" are ignored. An eligible line with too
// few fields or a non-numeric variance is dropped silently (counted in
// Skipped). When a symbol appears on more than one eligible line, the
// first occurrence wins.
//
// A missing or unreadable file yields an empty mapping with a warning.
func LoadVariances(path string) (map[string]float64, VarianceStats) {
	out := make(map[string]float64)
	var stats VarianceStats

	f, err := os.Open(path)
	if err != nil {
		logger.L().Warn().Str("file", filepath.Base(path)).Err(err).Msg("variance file unavailable, defaults apply")
		return out, stats
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		fields := strings.Split(line, ",")
		if strings.TrimSpace(fields[0]) != varianceRecordType {
			continue
		}
		if len(fields) <= varianceValueIdx {
			stats.Skipped++
			continue
		}

		symbol := strings.TrimSpace(fields[varianceSymbolIdx])
		if symbol == "" {
			stats.Skipped++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[varianceValueIdx]), 64)
		if err != nil {
			stats.Skipped++
			continue
		}

		if _, ok := out[symbol]; ok {
			stats.Duplicates++
			continue
		}
		out[symbol] = v
		stats.Records++
	}
	if err := sc.Err(); err != nil {
		logger.L().Warn().Str("file", filepath.Base(path)).Err(err).Msg("variance file truncated mid-read")
	}
	return out, stats
}
