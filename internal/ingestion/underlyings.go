package ingestion

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nsepulse/nsepulse/internal/logger"
)

var underlyingAliases = []string{"SYMBOL", "UNDERLYING"}

// LoadUnderlyings reads the derivative-underlyings file and returns the set
// of symbols that have futures and options contracts. Symbols are trimmed
// and de-duplicated.
//
// A missing or unreadable file yields an empty set with a warning; every
// security then resolves as not F&O-eligible.
func LoadUnderlyings(path string) map[string]struct{} {
	set := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		logger.L().Warn().Str("file", filepath.Base(path)).Err(err).Msg("underlyings file unavailable, no symbols flagged F&O")
		return set
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first, err := r.Read()
	if err != nil {
		return set
	}

	// If the first row names the symbol column, use it as a header;
	// otherwise the file is a bare single-column list starting at row one.
	col := resolveColumn(first, underlyingAliases)
	if col < 0 {
		col = 0
		if s := strings.TrimSpace(first[0]); s != "" {
			set[s] = struct{}{}
		}
	}

	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			continue
		}
		if len(rec) <= col {
			continue
		}
		if s := strings.TrimSpace(rec[col]); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
