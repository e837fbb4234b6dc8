package testing

import "github.com/shubhams167/aura/internal/domain"

// NewHoldingFixtures returns a set of test holdings for use in tests
func NewHoldingFixtures() []domain.RawHolding {
	return []domain.RawHolding{
		{
			ISIN:              "INE002A01018",
			TradingSymbol:     "RELIANCE",
			Quantity:          10,
			AveragePrice:      100,
			DematFreeQuantity: 10,
		},
		{
			ISIN:              "INE467B01029",
			TradingSymbol:     "TCS",
			Quantity:          5,
			AveragePrice:      3000,
			DematFreeQuantity: 5,
		},
		{
			ISIN:          "INE009A01021",
			TradingSymbol: "INFY",
			Quantity:      0,
			AveragePrice:  0,
		},
	}
}

// NewPositionFixtures returns a set of test positions for use in tests
func NewPositionFixtures() []domain.RawPosition {
	return []domain.RawPosition{
		{
			TradingSymbol:  "NIFTY24DECFUT",
			CreditQuantity: 50,
			CreditPrice:    24000,
			Exchange:       "NSE",
			Quantity:       50,
			Product:        "NRML",
			NetPrice:       24000,
			RealisedPnL:    1250.5,
		},
		{
			TradingSymbol:  "SBIN",
			CreditQuantity: 20,
			CreditPrice:    800,
			DebitQuantity:  20,
			DebitPrice:     790,
			Exchange:       "NSE",
			Product:        "MIS",
			RealisedPnL:    -200,
		},
	}
}
