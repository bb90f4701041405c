package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nsepulse/nsepulse/internal/domain/models"
	"github.com/nsepulse/nsepulse/internal/ingestion"
	"github.com/nsepulse/nsepulse/internal/storage"
)

// fakeWriter captures the persisted records so stage behavior can be
// asserted without touching the filesystem.
type fakeWriter struct {
	records []models.Security
	err     error
}

func (f *fakeWriter) WriteSecurities(recs []models.Security) error {
	if f.err != nil {
		return f.err
	}
	f.records = append([]models.Security(nil), recs...)
	return nil
}

func overrideWriter(t *testing.T, w storage.ResultWriter) {
	t.Helper()
	old := writerCtor
	writerCtor = func(string) storage.ResultWriter { return w }
	t.Cleanup(func() { writerCtor = old })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// fixtureInputs lays out a full input set covering every enrichment path:
// a record per category, a series backfill, a missing trade value and a
// variance default.
func fixtureInputs(t *testing.T, dir string) Inputs {
	t.Helper()
	sec := writeFile(t, dir, "securities.csv",
		"SYMBOL,SERIES,PRICE_RANGE\n"+
			"ABC,EQ,100-110\n"+
			"DEF,,\n"+
			"GHI,BE,100-101\n"+
			"JKL,EQ,95-105\n")
	b1 := writeFile(t, dir, "bhav1.csv",
		"SYMBOL,SERIES,TOTTRDVAL\n"+
			"ABC,EQ,50000000\n"+
			"JKL,EQ,20000000\n")
	b2 := writeFile(t, dir, "bhav2.csv",
		"SYMBOL,SERIES,TOTTRDVAL\n"+
			"ABC,EQ,70000000\n"+
			"DEF,EQ,30000000\n"+
			"JKL,EQ,30000000\n")
	und := writeFile(t, dir, "fo.csv", "SYMBOL\nDEF\n")
	vr := writeFile(t, dir, "var.txt",
		"10,HEADER\n"+
			"20,DEF,x,y,15\n")

	return Inputs{
		SecuritiesFile:  sec,
		BhavcopyFiles:   []string{b1, b2},
		UnderlyingsFile: und,
		VarianceFile:    vr,
		OutputFile:      filepath.Join(dir, "out.csv"),
	}
}

func TestRun_EnrichesAndCategorizes(t *testing.T) {
	dir := t.TempDir()
	in := fixtureInputs(t, dir)

	fw := &fakeWriter{}
	overrideWriter(t, fw)

	if err := Run(context.Background(), in); err != nil {
		t.Fatalf("Run err: %v", err)
	}
	if len(fw.records) != 4 {
		t.Fatalf("persisted %d records, want 4", len(fw.records))
	}

	// primary-file row order survives every join
	for i, want := range []string{"ABC", "DEF", "GHI", "JKL"} {
		if fw.records[i].Symbol != want {
			t.Fatalf("row %d = %q, want %q", i, fw.records[i].Symbol, want)
		}
	}

	abc := fw.records[0]
	if abc.AvgTradedValue != 60000000 {
		t.Fatalf("ABC avg = %v, want mean across both files", abc.AvgTradedValue)
	}
	if math.Abs(abc.PriceBandPct-9.523809523809524) > 1e-9 {
		t.Fatalf("ABC band = %v", abc.PriceBandPct)
	}
	if abc.IsFnoStock || abc.Variance != models.DefaultVariance {
		t.Fatalf("ABC fno/variance = %v/%v", abc.IsFnoStock, abc.Variance)
	}
	if abc.Category != models.CategoryFiveX {
		t.Fatalf("ABC category = %q", abc.Category)
	}

	def := fw.records[1]
	if def.Series != "EQ" {
		t.Fatalf("DEF series not backfilled from trade files: %q", def.Series)
	}
	if !def.IsFnoStock || def.Variance != 15 {
		t.Fatalf("DEF fno/variance = %v/%v", def.IsFnoStock, def.Variance)
	}
	if def.Category != models.CategoryFiveX {
		t.Fatalf("DEF category = %q, want 5x via the F&O rule", def.Category)
	}

	ghi := fw.records[2]
	if ghi.AvgTradedValue != 0 {
		t.Fatalf("GHI traded value = %v, want defaulted 0", ghi.AvgTradedValue)
	}
	if ghi.Variance != models.DefaultVariance || ghi.Category != models.CategoryDelivery {
		t.Fatalf("GHI = %+v", ghi)
	}

	jkl := fw.records[3]
	if jkl.AvgTradedValue != 25000000 || jkl.Category != models.CategoryThreeX {
		t.Fatalf("JKL = %+v", jkl)
	}
}

func TestRun_MissingAuxiliaryFilesDegrade(t *testing.T) {
	dir := t.TempDir()
	sec := writeFile(t, dir, "securities.csv", "SYMBOL,SERIES\nABC,EQ\n")

	fw := &fakeWriter{}
	overrideWriter(t, fw)

	in := Inputs{
		SecuritiesFile:  sec,
		BhavcopyFiles:   []string{filepath.Join(dir, "no1.csv"), filepath.Join(dir, "no2.csv")},
		UnderlyingsFile: filepath.Join(dir, "no-fo.csv"),
		VarianceFile:    filepath.Join(dir, "no-var.txt"),
		OutputFile:      filepath.Join(dir, "out.csv"),
	}
	if err := Run(context.Background(), in); err != nil {
		t.Fatalf("missing auxiliary files must not be fatal: %v", err)
	}

	if len(fw.records) != 1 {
		t.Fatalf("records = %+v", fw.records)
	}
	got := fw.records[0]
	if got.AvgTradedValue != 0 || got.PriceBandPct != 0 || got.IsFnoStock ||
		got.Variance != models.DefaultVariance || got.Category != models.CategoryDelivery {
		t.Fatalf("degraded record = %+v", got)
	}
}

func TestRun_MissingPrimaryIsFatal(t *testing.T) {
	dir := t.TempDir()
	fw := &fakeWriter{}
	overrideWriter(t, fw)

	in := Inputs{
		SecuritiesFile: filepath.Join(dir, "nope.csv"),
		OutputFile:     filepath.Join(dir, "out.csv"),
	}
	err := Run(context.Background(), in)
	if !errors.Is(err, ingestion.ErrMissingSecuritiesFile) {
		t.Fatalf("err = %v, want ErrMissingSecuritiesFile", err)
	}
	if fw.records != nil {
		t.Fatalf("nothing may be written on a fatal error")
	}
}

func TestRun_WriteErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	in := fixtureInputs(t, dir)
	overrideWriter(t, &fakeWriter{err: errors.New("disk full")})

	if err := Run(context.Background(), in); err == nil {
		t.Fatalf("expected persist error to surface")
	}
}

func TestRun_IdempotentOutput(t *testing.T) {
	dir := t.TempDir()
	in := fixtureInputs(t, dir)

	if err := Run(context.Background(), in); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(in.OutputFile)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}

	if err := Run(context.Background(), in); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(in.OutputFile)

	if !bytes.Equal(first, second) {
		t.Fatalf("rerun over identical inputs produced different bytes")
	}
}
