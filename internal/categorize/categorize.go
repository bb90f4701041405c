package categorize

import (
	"github.com/nsepulse/nsepulse/internal/domain/models"
)

// Rule thresholds. Traded values are in the source unit, band percentages
// relative to the band midpoint.
const (
	fiveXTradedValueMin  = 50_000_000.0
	threeXTradedValueMin = 20_000_000.0
	minBandPct           = 5.0
	fiveXVarianceMax     = 20.0
	threeXVarianceMax    = 33.33
)

// marginSeries are the series codes eligible for the traded-value rules.
var marginSeries = map[string]struct{}{
	"EQ": {},
	"BE": {},
	"BZ": {},
}

// Assign evaluates the leverage rules for every record, sets its Category
// in place, and returns how many records landed in each category.
//
// Records are evaluated independently. Rules are ordered from the highest
// leverage down and the first match wins, so a record qualifying for
// several categories always takes the highest. Assign never fails: records
// are expected to arrive fully defaulted from the load and resolve stages,
// and the defaults (0 traded value, 0 band, sentinel variance) are applied
// once more here for any record built outside that path.
func Assign(records []models.Security) map[models.Category]int {
	counts := map[models.Category]int{
		models.CategoryFiveX:    0,
		models.CategoryThreeX:   0,
		models.CategoryDelivery: 0,
	}
	for i := range records {
		ensureDefaults(&records[i])
		c := categoryFor(&records[i])
		records[i].Category = c
		counts[c]++
	}
	return counts
}

func categoryFor(s *models.Security) models.Category {
	_, seriesOK := marginSeries[s.Series]

	switch {
	case seriesOK && s.AvgTradedValue > fiveXTradedValueMin && s.PriceBandPct > minBandPct:
		return models.CategoryFiveX
	case s.IsFnoStock && s.Variance <= fiveXVarianceMax:
		return models.CategoryFiveX
	case seriesOK && s.AvgTradedValue > threeXTradedValueMin && s.PriceBandPct > minBandPct:
		return models.CategoryThreeX
	case s.IsFnoStock && s.Variance <= threeXVarianceMax:
		return models.CategoryThreeX
	default:
		return models.CategoryDelivery
	}
}

// ensureDefaults backstops records that skipped the resolve stages.
// A zero variance on a non-F&O record means "never filled", not "riskless":
// variance only ever reaches a record through the variance merge, which
// starts from the sentinel.
func ensureDefaults(s *models.Security) {
	if s.Variance == 0 && !s.IsFnoStock {
		s.Variance = models.DefaultVariance
	}
}
