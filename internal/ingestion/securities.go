package ingestion

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nsepulse/nsepulse/internal/domain/models"
)

// Fatal configuration errors for the primary input. Everything else the
// loader encounters degrades to a defaulted field, never an abort.
var (
	ErrMissingSecuritiesFile = errors.New("securities file missing")
	ErrNoSymbolColumn        = errors.New("securities file has no resolvable symbol column")
)

var priceRangeAliases = []string{"PRICE_RANGE", "PRICE_BAND", "PRICE BAND"}

// SecurityMaster is the primary table after load: one fully-defaulted
// record per row in original file order, plus flags recording which
// optional source columns actually existed. Downstream stages use the
// flags to decide between per-row parsing and whole-column defaulting.
type SecurityMaster struct {
	Records       []models.Security
	HasSeries     bool
	HasPriceRange bool
}

// LoadSecurities reads the primary security-master file.
//
// When headersPath is non-empty and readable, it must contain one header
// name per line; those names (upper-cased) become the column names and the
// data file is read headerless. Otherwise the data file's first row is the
// header. Column lookup is by name after upper-casing and trimming, so the
// master's schema does not have to be fixed beyond "a symbol column exists".
//
// Rows with an empty symbol are dropped. A missing file or an unresolvable
// symbol column is a fatal error: no partial dataset is ever produced from
// a broken master.
func LoadSecurities(path, headersPath string) (*SecurityMaster, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSecuritiesFile, path)
		}
		return nil, fmt.Errorf("open securities file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := loadHeaderList(headersPath)
	if err != nil {
		return nil, err
	}
	if header == nil {
		row, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("read securities header: %w", err)
		}
		header = row
	}

	symCol := resolveColumn(header, symbolAliases)
	if symCol < 0 {
		return nil, fmt.Errorf("%w: header %v", ErrNoSymbolColumn, header)
	}
	serCol := resolveColumn(header, seriesAliases)
	bandCol := resolveColumn(header, priceRangeAliases)

	master := &SecurityMaster{
		HasSeries:     serCol >= 0,
		HasPriceRange: bandCol >= 0,
	}

	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read securities row: %w", err)
		}
		if len(rec) <= symCol {
			continue
		}
		symbol := strings.TrimSpace(rec[symCol])
		if symbol == "" {
			continue
		}

		s := models.NewSecurity(symbol)
		if serCol >= 0 && len(rec) > serCol {
			s.Series = strings.TrimSpace(rec[serCol])
		}
		if bandCol >= 0 && len(rec) > bandCol {
			s.PriceRange = strings.TrimSpace(rec[bandCol])
		}
		master.Records = append(master.Records, s)
	}
	return master, nil
}

// loadHeaderList reads the optional external header file: one column name
// per line, upper-cased on load. Returns nil when no path was configured
// or the file does not exist, which means "use the data file's first row".
func loadHeaderList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open header list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var header []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if name != "" {
			header = append(header, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read header list: %w", err)
	}
	return header, nil
}
