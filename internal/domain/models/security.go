package models

// Category is the trading-leverage bucket assigned to a security.
type Category string

const (
	CategoryFiveX    Category = "5x"
	CategoryThreeX   Category = "3x"
	CategoryDelivery Category = "Only Delivery"
)

// DefaultVariance is the sentinel for "variance unknown or ineligible".
// It is far above every rule threshold, so an absent variance can never
// qualify a security for a leveraged category on its own.
const DefaultVariance = 9999.0

// Security is one row of the enriched dataset: a symbol+series combination
// from the security master, progressively filled in from the auxiliary
// sources and finalized with a leverage category.
//
// Numeric fields are never left "missing": records built through
// NewSecurity start from the documented defaults (0 for traded value and
// band, DefaultVariance for variance) and every enrichment step either
// overwrites a field or leaves its default in place.
type Security struct {
	Symbol         string
	Series         string
	PriceRange     string
	AvgTradedValue float64
	PriceBandPct   float64
	IsFnoStock     bool
	Variance       float64
	Category       Category
}

// NewSecurity returns a fully-defaulted record for the given symbol.
func NewSecurity(symbol string) Security {
	return Security{
		Symbol:   symbol,
		Variance: DefaultVariance,
	}
}

// TradeAggregate is the per-symbol summary built from the daily trade
// files: the mean traded value across every row the symbol appeared in,
// and the last series code seen for it (in file order).
type TradeAggregate struct {
	AvgTradedValue float64
	Series         string
}
