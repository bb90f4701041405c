package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsepulse/nsepulse/internal/domain/models"
)

func sec(symbol string) models.Security {
	return models.NewSecurity(symbol)
}

func TestAssign_RuleTable(t *testing.T) {
	cases := []struct {
		name string
		mod  func(s *models.Security)
		want models.Category
	}{
		{
			name: "liquid wide-band equity gets 5x",
			mod: func(s *models.Security) {
				s.Series = "EQ"
				s.AvgTradedValue = 60_000_000
				s.PriceBandPct = 6
			},
			want: models.CategoryFiveX,
		},
		{
			name: "low-variance fno stock gets 5x",
			mod: func(s *models.Security) {
				s.IsFnoStock = true
				s.Variance = 20
			},
			want: models.CategoryFiveX,
		},
		{
			name: "mid traded value gets 3x",
			mod: func(s *models.Security) {
				s.Series = "BE"
				s.AvgTradedValue = 30_000_000
				s.PriceBandPct = 6
			},
			want: models.CategoryThreeX,
		},
		{
			name: "fno stock at 3x variance limit",
			mod: func(s *models.Security) {
				s.IsFnoStock = true
				s.Variance = 33.33
			},
			want: models.CategoryThreeX,
		},
		{
			name: "ineligible series falls through traded-value rules",
			mod: func(s *models.Security) {
				s.Series = "XY"
				s.AvgTradedValue = 60_000_000
				s.PriceBandPct = 6
			},
			want: models.CategoryDelivery,
		},
		{
			name: "band at threshold is not above it",
			mod: func(s *models.Security) {
				s.Series = "EQ"
				s.AvgTradedValue = 60_000_000
				s.PriceBandPct = 5
			},
			want: models.CategoryDelivery,
		},
		{
			name: "fno stock above 3x variance limit",
			mod: func(s *models.Security) {
				s.IsFnoStock = true
				s.Variance = 34
			},
			want: models.CategoryDelivery,
		},
		{
			name: "variance sentinel never triggers a category",
			mod:  func(s *models.Security) {},
			want: models.CategoryDelivery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := sec("ABC")
			tc.mod(&s)
			recs := []models.Security{s}

			counts := Assign(recs)
			assert.Equal(t, tc.want, recs[0].Category)
			assert.Equal(t, 1, counts[tc.want])
		})
	}
}

func TestAssign_PrecedenceHighestWins(t *testing.T) {
	// qualifies for the traded-value 5x rule AND only the 3x F&O rule
	s := sec("ABC")
	s.Series = "EQ"
	s.AvgTradedValue = 60_000_000
	s.PriceBandPct = 6
	s.IsFnoStock = true
	s.Variance = 25 // 3x by variance, 5x by traded value

	recs := []models.Security{s}
	Assign(recs)
	require.Equal(t, models.CategoryFiveX, recs[0].Category)
}

func TestAssign_CountsAndDefaults(t *testing.T) {
	five := sec("A")
	five.Series = "EQ"
	five.AvgTradedValue = 60_000_000
	five.PriceBandPct = 10

	three := sec("B")
	three.IsFnoStock = true
	three.Variance = 30

	plain := sec("C")

	// built outside the load path: zero variance on a non-F&O record must
	// be backstopped to the sentinel, not treated as riskless
	var bare models.Security
	bare.Symbol = "D"

	recs := []models.Security{five, three, plain, bare}
	counts := Assign(recs)

	require.Equal(t, 1, counts[models.CategoryFiveX])
	require.Equal(t, 1, counts[models.CategoryThreeX])
	require.Equal(t, 2, counts[models.CategoryDelivery])
	assert.Equal(t, models.DefaultVariance, recs[3].Variance)
}
