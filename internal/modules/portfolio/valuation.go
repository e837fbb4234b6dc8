package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shubhams167/aura/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Summary aggregates a valued holdings list
type Summary struct {
	TotalInvested     float64 `json:"total_invested"`
	TotalCurrentValue float64 `json:"total_current_value"`
	TotalPnL          float64 `json:"total_pnl"`
	TotalPnLPercent   float64 `json:"total_pnl_percent"`
	HoldingsCount     int     `json:"holdings_count"`
}

// AllocationSlice is one symbol's share of the portfolio's current value
type AllocationSlice struct {
	Symbol  string  `json:"symbol"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Enrich values every holding at its last traded price.
// A symbol missing from prices, or priced at zero, falls back to the holding's average price.
// The result preserves input order and has one entry per input holding.
func Enrich(holdings []domain.RawHolding, prices map[string]float64) []domain.EnrichedHolding {
	enriched := make([]domain.EnrichedHolding, len(holdings))
	for i, h := range holdings {
		price := h.AveragePrice
		if p, ok := prices[h.TradingSymbol]; ok && p != 0 {
			price = p
		}

		qty := decimal.NewFromFloat(h.Quantity)
		invested := qty.Mul(decimal.NewFromFloat(h.AveragePrice))
		current := qty.Mul(decimal.NewFromFloat(price))
		pnl := current.Sub(invested)

		enriched[i] = domain.EnrichedHolding{
			RawHolding:    h,
			CurrentPrice:  price,
			InvestedValue: invested.InexactFloat64(),
			CurrentValue:  current.InexactFloat64(),
			PnL:           pnl.InexactFloat64(),
			PnLPercent:    percentOf(pnl, invested),
		}
	}
	return enriched
}

// Summarize totals invested value, current value and P&L across holdings
func Summarize(holdings []domain.EnrichedHolding) Summary {
	invested := decimal.Zero
	current := decimal.Zero
	for _, h := range holdings {
		invested = invested.Add(decimal.NewFromFloat(h.InvestedValue))
		current = current.Add(decimal.NewFromFloat(h.CurrentValue))
	}
	pnl := current.Sub(invested)

	return Summary{
		TotalInvested:     invested.InexactFloat64(),
		TotalCurrentValue: current.InexactFloat64(),
		TotalPnL:          pnl.InexactFloat64(),
		TotalPnLPercent:   percentOf(pnl, invested),
		HoldingsCount:     len(holdings),
	}
}

// Allocation returns each symbol's share of total current value, largest first.
// Holdings with no current value are left out.
func Allocation(holdings []domain.EnrichedHolding) []AllocationSlice {
	total := decimal.Zero
	values := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		v := decimal.NewFromFloat(h.CurrentValue)
		if !v.IsPositive() {
			continue
		}
		values[h.TradingSymbol] = values[h.TradingSymbol].Add(v)
		total = total.Add(v)
	}

	allocation := make([]AllocationSlice, 0, len(values))
	for symbol, v := range values {
		allocation = append(allocation, AllocationSlice{
			Symbol:  symbol,
			Value:   v.InexactFloat64(),
			Percent: v.Div(total).Mul(hundred).Round(2).InexactFloat64(),
		})
	}

	sort.Slice(allocation, func(i, j int) bool {
		if allocation[i].Value != allocation[j].Value {
			return allocation[i].Value > allocation[j].Value
		}
		return allocation[i].Symbol < allocation[j].Symbol
	})
	return allocation
}

// TotalRealisedPnL sums realised P&L across positions
func TotalRealisedPnL(positions []domain.RawPosition) float64 {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(decimal.NewFromFloat(p.RealisedPnL))
	}
	return total.InexactFloat64()
}

// percentOf returns part/whole*100, or 0 when whole is not positive
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
