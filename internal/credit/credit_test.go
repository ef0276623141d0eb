package credit

import (
	"math"
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		max       float64
		percent   float64
		bar       float64
		tier      Tier
		overLimit bool
	}{
		{"half used", 50, 100, 50, 50, Nominal, false},
		{"ninety percent", 90, 100, 90, 90, Critical, false},
		{"caution band", 85, 100, 85, 85, Caution, false},
		{"just over caution", 85.5, 100, 85.5, 85.5, Critical, false},
		{"zero limit", 40, 0, 0, 0, Nominal, false},
		{"over limit clamps bar", 150, 100, 150, 100, Critical, true},
		{"negative balance", -10, 100, -10, 0, Nominal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compute(tt.current, tt.max)
			assert.InDelta(t, tt.percent, p.Percent, 1e-9)
			assert.InDelta(t, tt.bar, p.BarPercent, 1e-9)
			assert.Equal(t, tt.tier, p.Tier)
			assert.Equal(t, tt.overLimit, p.OverLimit)
			assert.False(t, math.IsNaN(p.Percent))
		})
	}
}

func TestProgress_Available(t *testing.T) {
	assert.InDelta(t, 30.0, Compute(70, 100).Available(), 1e-9)
	assert.InDelta(t, -20.0, Compute(120, 100).Available(), 1e-9)
	assert.InDelta(t, 0.5, Compute(50, 100).Ratio(), 1e-9)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "nominal", Nominal.String())
	assert.Equal(t, "caution", Caution.String())
	assert.Equal(t, "critical", Critical.String())
	assert.Equal(t, "50.0% of 100.00 (nominal)", Compute(50, 100).String())
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(0.01))
	assert.ErrorIs(t, ValidateLimit(0), ErrInvalidLimit)
	assert.ErrorIs(t, ValidateLimit(-5), ErrInvalidLimit)
	assert.ErrorIs(t, ValidateLimit(math.NaN()), ErrInvalidLimit)
}

func TestSummarize(t *testing.T) {
	day := func(d int) model.Timestamp {
		return model.Timestamp{Time: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)}
	}

	var purchases []model.Purchase
	for i := 1; i <= 7; i++ {
		purchases = append(purchases, model.Purchase{ID: i, Amount: 0.1, PurchaseDate: day(i)})
	}
	clients := []model.Client{
		{ID: 1, Montant: 10, MaxAmount: 100},
		{ID: 2, Montant: 110, MaxAmount: 100},
	}

	s := Summarize(clients, []model.Product{{ID: 1}}, purchases)
	assert.Equal(t, 2, s.Clients)
	assert.Equal(t, 1, s.Products)
	assert.Equal(t, 7, s.Purchases)
	assert.Equal(t, 1, s.OverLimit)
	assert.Equal(t, "0.70", s.Revenue.StringFixed(2))
	assert.True(t, s.Revenue.Equal(s.Revenue.Round(1)), "decimal sum has no float drift")

	ids := make([]int, len(s.Recent))
	for i, p := range s.Recent {
		ids[i] = p.ID
	}
	assert.Equal(t, []int{7, 6, 5, 4, 3}, ids)
}

func TestRecent_FewerThanN(t *testing.T) {
	assert.Len(t, Recent([]model.Purchase{{ID: 1}}, RecentCount), 1)
	assert.Empty(t, Recent(nil, RecentCount))
}
