package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment
// variables or a .env file.
//
// Example ENV equivalent:
//
//	SECURITIES_FILE=./data/input/securities.csv
//	HEADERS_FILE=./data/input/securities_headers.txt
//	BHAVCOPY_DIR=./data/input
//	BHAVCOPY_DAYS=5
//	UNDERLYINGS_FILE=./data/input/fo_underlyings.csv
//	VARIANCE_FILE=./data/input/var_margins.csv
//	OUTPUT_FILE=./data/output/securities_categorized.csv
//	EXTRA_HOLIDAYS=03-14,10-21
type Config struct {
	Input  InputConfig  // locations of the source flat files
	Output OutputConfig // location of the result file
}

// InputConfig names every source file the batch reads.
//
// Fields:
//   - SecuritiesFile: the primary security master (required).
//   - HeadersFile: optional single-column list of header names for a
//     headerless master file.
//   - BhavcopyDir: directory holding the daily trade summary files.
//   - BhavcopyDays: how many past trading days of trade files to load (1-7).
//   - BhavcopyFiles: explicit comma-separated trade file list; overrides
//     the directory+days derivation when set.
//   - UnderlyingsFile: F&O underlying symbol list (optional).
//   - VarianceFile: record-typed variance/margin file (optional).
//   - ExtraHolidays: extra market holidays as MM-DD, for the movable ones.
type InputConfig struct {
	SecuritiesFile  string
	HeadersFile     string
	BhavcopyDir     string
	BhavcopyDays    int
	BhavcopyFiles   []string
	UnderlyingsFile string
	VarianceFile    string
	ExtraHolidays   []string
}

// OutputConfig holds the output location.
type OutputConfig struct {
	File string
}

// AppConfig is the globally accessible configuration instance, populated
// once via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - validateConfig() terminates the app when required settings are empty.
func LoadConfig() {
	viper.SetDefault("SECURITIES_FILE", "./data/input/securities.csv")
	viper.SetDefault("HEADERS_FILE", "")
	viper.SetDefault("BHAVCOPY_DIR", "./data/input")
	viper.SetDefault("BHAVCOPY_DAYS", 5)
	viper.SetDefault("BHAVCOPY_FILES", "")
	viper.SetDefault("UNDERLYINGS_FILE", "./data/input/fo_underlyings.csv")
	viper.SetDefault("VARIANCE_FILE", "./data/input/var_margins.csv")
	viper.SetDefault("OUTPUT_FILE", "./data/output/securities_categorized.csv")
	viper.SetDefault("EXTRA_HOLIDAYS", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Input: InputConfig{
			SecuritiesFile:  viper.GetString("SECURITIES_FILE"),
			HeadersFile:     viper.GetString("HEADERS_FILE"),
			BhavcopyDir:     viper.GetString("BHAVCOPY_DIR"),
			BhavcopyDays:    viper.GetInt("BHAVCOPY_DAYS"),
			BhavcopyFiles:   splitList(viper.GetString("BHAVCOPY_FILES")),
			UnderlyingsFile: viper.GetString("UNDERLYINGS_FILE"),
			VarianceFile:    viper.GetString("VARIANCE_FILE"),
			ExtraHolidays:   splitList(viper.GetString("EXTRA_HOLIDAYS")),
		},
		Output: OutputConfig{
			File: viper.GetString("OUTPUT_FILE"),
		},
	}

	// Trade files are published one per trading day; a lookback beyond the
	// past week has no files to find.
	if AppConfig.Input.BhavcopyDays < 1 {
		AppConfig.Input.BhavcopyDays = 1
	}
	if AppConfig.Input.BhavcopyDays > 7 {
		AppConfig.Input.BhavcopyDays = 7
	}

	validateConfig()
}

// splitList turns a comma-separated setting into a trimmed slice,
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validateConfig ensures required variables are present and terminates the
// application if they are missing.
func validateConfig() {
	var missing []string

	if AppConfig.Input.SecuritiesFile == "" {
		missing = append(missing, "SECURITIES_FILE")
	}
	if AppConfig.Input.BhavcopyDir == "" && len(AppConfig.Input.BhavcopyFiles) == 0 {
		missing = append(missing, "BHAVCOPY_DIR")
	}
	if AppConfig.Output.File == "" {
		missing = append(missing, "OUTPUT_FILE")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
