package groww

import "github.com/shubhams167/aura/internal/domain"

// Groww API Field Name Mappings
//
// Holding fields map one to one onto domain.RawHolding, except:
//   "groww_locked_quantity" → BrokerLockedQuantity (quantity locked by the broker itself)
//
// Position fields map one to one onto domain.RawPosition.
//
// Token response fields are camelCase ("tokenRefId", "sessionName", "isActive")
// while every data endpoint uses snake_case.

// transformTokenToDomain converts a handshake response to a domain access token
func transformTokenToDomain(tr *TokenResponse) *domain.AccessToken {
	if tr == nil {
		return nil
	}
	return &domain.AccessToken{
		Token:       tr.Token,
		TokenRefID:  tr.TokenRefID,
		SessionName: tr.SessionName,
		Expiry:      tr.Expiry,
		Active:      tr.IsActive,
	}
}

// transformHoldingsToDomain converts Groww holdings to domain raw holdings
func transformHoldingsToDomain(holdings []Holding) []domain.RawHolding {
	result := make([]domain.RawHolding, len(holdings))
	for i, h := range holdings {
		result[i] = domain.RawHolding{
			ISIN:                              h.ISIN,
			TradingSymbol:                     h.TradingSymbol,
			Quantity:                          h.Quantity,
			AveragePrice:                      h.AveragePrice,
			PledgeQuantity:                    h.PledgeQuantity,
			DematLockedQuantity:               h.DematLockedQuantity,
			BrokerLockedQuantity:              h.GrowwLockedQuantity,
			RepledgeQuantity:                  h.RepledgeQuantity,
			T1Quantity:                        h.T1Quantity,
			DematFreeQuantity:                 h.DematFreeQuantity,
			CorporateActionAdditionalQuantity: h.CorporateActionAdditionalQuantity,
			ActiveDematTransferQuantity:       h.ActiveDematTransferQuantity,
		}
	}
	return result
}

// transformPositionsToDomain converts Groww positions to domain raw positions
func transformPositionsToDomain(positions []Position) []domain.RawPosition {
	result := make([]domain.RawPosition, len(positions))
	for i, p := range positions {
		result[i] = domain.RawPosition(p)
	}
	return result
}
