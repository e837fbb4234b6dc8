package domain

import (
	"fmt"
	"strings"
)

// Broker-agnostic types for linked brokerage accounts.
// These types abstract away broker-specific wire formats (Groww, Upstox, Zerodha).

// BrokerKind identifies a supported brokerage
type BrokerKind string

const (
	BrokerGroww   BrokerKind = "groww"
	BrokerUpstox  BrokerKind = "upstox"
	BrokerZerodha BrokerKind = "zerodha"
)

// AllBrokerKinds returns every broker a user can link, in display order
func AllBrokerKinds() []BrokerKind {
	return []BrokerKind{BrokerGroww, BrokerUpstox, BrokerZerodha}
}

// ParseBrokerKind validates a broker identifier (case-insensitive)
func ParseBrokerKind(s string) (BrokerKind, error) {
	kind := BrokerKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range AllBrokerKinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown broker %q", ErrInvalidInput, s)
}

// DisplayName returns the human-readable broker name
func (k BrokerKind) DisplayName() string {
	switch k {
	case BrokerGroww:
		return "Groww"
	case BrokerUpstox:
		return "Upstox"
	case BrokerZerodha:
		return "Zerodha"
	default:
		return string(k)
	}
}

// Segment is the market segment for position queries
type Segment string

const (
	SegmentCash      Segment = "CASH"
	SegmentFNO       Segment = "FNO"
	SegmentCommodity Segment = "COMMODITY"
)

// ParseSegment validates a segment; empty input yields SegmentCash
func ParseSegment(s string) (Segment, error) {
	switch seg := Segment(strings.ToUpper(strings.TrimSpace(s))); seg {
	case "":
		return SegmentCash, nil
	case SegmentCash, SegmentFNO, SegmentCommodity:
		return seg, nil
	default:
		return "", fmt.Errorf("%w: unknown segment %q", ErrInvalidInput, s)
	}
}

// DefaultExchange is used for live price lookups; holdings do not carry an exchange
const DefaultExchange = "NSE"

// AccessToken is a short-lived broker session token.
// It is held in memory for a single operation and never persisted or logged.
type AccessToken struct {
	Token       string
	TokenRefID  string
	SessionName string
	Expiry      string
	Active      bool
}

// RawHolding is a demat holding exactly as the broker reports it
type RawHolding struct {
	ISIN                              string  `json:"isin"`
	TradingSymbol                     string  `json:"trading_symbol"`
	Quantity                          float64 `json:"quantity"`
	AveragePrice                      float64 `json:"average_price"`
	PledgeQuantity                    float64 `json:"pledge_quantity"`
	DematLockedQuantity               float64 `json:"demat_locked_quantity"`
	BrokerLockedQuantity              float64 `json:"broker_locked_quantity"`
	RepledgeQuantity                  float64 `json:"repledge_quantity"`
	T1Quantity                        float64 `json:"t1_quantity"`
	DematFreeQuantity                 float64 `json:"demat_free_quantity"`
	CorporateActionAdditionalQuantity float64 `json:"corporate_action_additional_quantity"`
	ActiveDematTransferQuantity       float64 `json:"active_demat_transfer_quantity"`
}

// EnrichedHolding is a RawHolding valued at a current price
type EnrichedHolding struct {
	RawHolding
	CurrentPrice  float64 `json:"current_price"`
	InvestedValue float64 `json:"invested_value"`
	CurrentValue  float64 `json:"current_value"`
	PnL           float64 `json:"pnl"`
	PnLPercent    float64 `json:"pnl_percent"`
}

// RawPosition is an open or carried-forward trading position, passed through unmodified
type RawPosition struct {
	TradingSymbol              string  `json:"trading_symbol"`
	CreditQuantity             float64 `json:"credit_quantity"`
	CreditPrice                float64 `json:"credit_price"`
	DebitQuantity              float64 `json:"debit_quantity"`
	DebitPrice                 float64 `json:"debit_price"`
	CarryForwardCreditQuantity float64 `json:"carry_forward_credit_quantity"`
	CarryForwardCreditPrice    float64 `json:"carry_forward_credit_price"`
	CarryForwardDebitQuantity  float64 `json:"carry_forward_debit_quantity"`
	CarryForwardDebitPrice     float64 `json:"carry_forward_debit_price"`
	Exchange                   string  `json:"exchange"`
	SymbolISIN                 string  `json:"symbol_isin"`
	Quantity                   float64 `json:"quantity"`
	Product                    string  `json:"product"`
	NetCarryForwardQuantity    float64 `json:"net_carry_forward_quantity"`
	NetPrice                   float64 `json:"net_price"`
	NetCarryForwardPrice       float64 `json:"net_carry_forward_price"`
	RealisedPnL                float64 `json:"realised_pnl"`
}
