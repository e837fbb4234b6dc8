package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/domain"
	testingpkg "github.com/shubhams167/aura/internal/testing"
)

func TestEnrich(t *testing.T) {
	holding := domain.RawHolding{TradingSymbol: "RELIANCE", ISIN: "INE002A01018", Quantity: 10, AveragePrice: 100}

	tests := []struct {
		name        string
		prices      map[string]float64
		wantPrice   float64
		wantCurrent float64
		wantPnL     float64
		wantPercent float64
	}{
		{"live price", map[string]float64{"RELIANCE": 150}, 150, 1500, 500, 50},
		{"loss", map[string]float64{"RELIANCE": 80}, 80, 800, -200, -20},
		{"missing price falls back to average", map[string]float64{}, 100, 1000, 0, 0},
		{"nil prices falls back to average", nil, 100, 1000, 0, 0},
		{"zero price falls back to average", map[string]float64{"RELIANCE": 0}, 100, 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich([]domain.RawHolding{holding}, tt.prices)
			require.Len(t, got, 1)

			assert.Equal(t, holding, got[0].RawHolding)
			assert.Equal(t, tt.wantPrice, got[0].CurrentPrice)
			assert.Equal(t, 1000.0, got[0].InvestedValue)
			assert.Equal(t, tt.wantCurrent, got[0].CurrentValue)
			assert.Equal(t, tt.wantPnL, got[0].PnL)
			assert.Equal(t, tt.wantPercent, got[0].PnLPercent)
		})
	}
}

func TestEnrich_ZeroInvested(t *testing.T) {
	got := Enrich([]domain.RawHolding{{TradingSymbol: "BONUS", Quantity: 3, AveragePrice: 0}}, map[string]float64{"BONUS": 50})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].InvestedValue)
	assert.Equal(t, 150.0, got[0].CurrentValue)
	assert.Equal(t, 150.0, got[0].PnL)
	assert.Equal(t, 0.0, got[0].PnLPercent)
}

func TestEnrich_PreservesOrderAndCount(t *testing.T) {
	holdings := testingpkg.NewHoldingFixtures()
	got := Enrich(holdings, map[string]float64{"TCS": 3300})

	require.Len(t, got, len(holdings))
	for i := range holdings {
		assert.Equal(t, holdings[i].TradingSymbol, got[i].TradingSymbol)
	}
	assert.Equal(t, 100.0, got[0].CurrentPrice)
	assert.InDelta(t, 10.0, got[1].PnLPercent, 1e-9)
	assert.Equal(t, 0.0, got[2].PnLPercent)

	assert.NotNil(t, Enrich(nil, nil))
	assert.Empty(t, Enrich(nil, nil))
}

func TestSummarize(t *testing.T) {
	enriched := Enrich(testingpkg.NewHoldingFixtures(), map[string]float64{"RELIANCE": 150, "TCS": 2700})
	s := Summarize(enriched)

	assert.Equal(t, 16000.0, s.TotalInvested)
	assert.Equal(t, 15000.0, s.TotalCurrentValue)
	assert.Equal(t, -1000.0, s.TotalPnL)
	assert.Equal(t, -6.25, s.TotalPnLPercent)
	assert.Equal(t, 3, s.HoldingsCount)

	empty := Summarize(nil)
	assert.Equal(t, Summary{}, empty)
}

func TestAllocation(t *testing.T) {
	enriched := Enrich(testingpkg.NewHoldingFixtures(), map[string]float64{"RELIANCE": 150, "TCS": 2700})
	got := Allocation(enriched)

	require.Len(t, got, 2, "zero-value holdings are excluded")
	assert.Equal(t, AllocationSlice{Symbol: "TCS", Value: 13500, Percent: 90}, got[0])
	assert.Equal(t, AllocationSlice{Symbol: "RELIANCE", Value: 1500, Percent: 10}, got[1])

	assert.Empty(t, Allocation(nil))
}

func TestTotalRealisedPnL(t *testing.T) {
	assert.Equal(t, 1050.5, TotalRealisedPnL(testingpkg.NewPositionFixtures()))
	assert.Equal(t, 0.0, TotalRealisedPnL(nil))
}
