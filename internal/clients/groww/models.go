package groww

// Wire types of the Groww trading API.

// TokenRequest is the body of the access-token handshake
type TokenRequest struct {
	KeyType   string `json:"key_type"`
	Checksum  string `json:"checksum"`
	Timestamp string `json:"timestamp"`
}

// TokenResponse is returned by a successful handshake
type TokenResponse struct {
	Token       string `json:"token"`
	TokenRefID  string `json:"tokenRefId"`
	SessionName string `json:"sessionName"`
	Expiry      string `json:"expiry"`
	IsActive    bool   `json:"isActive"`
}

// APIError is the error object carried by FAILURE envelopes
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope status values
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Holding is a demat holding as reported by Groww
type Holding struct {
	ISIN                              string  `json:"isin"`
	TradingSymbol                     string  `json:"trading_symbol"`
	Quantity                          float64 `json:"quantity"`
	AveragePrice                      float64 `json:"average_price"`
	PledgeQuantity                    float64 `json:"pledge_quantity"`
	DematLockedQuantity               float64 `json:"demat_locked_quantity"`
	GrowwLockedQuantity               float64 `json:"groww_locked_quantity"`
	RepledgeQuantity                  float64 `json:"repledge_quantity"`
	T1Quantity                        float64 `json:"t1_quantity"`
	DematFreeQuantity                 float64 `json:"demat_free_quantity"`
	CorporateActionAdditionalQuantity float64 `json:"corporate_action_additional_quantity"`
	ActiveDematTransferQuantity       float64 `json:"active_demat_transfer_quantity"`
}

// HoldingsResponse is the envelope of GET /v1/holdings/user
type HoldingsResponse struct {
	Status  string           `json:"status"`
	Payload *HoldingsPayload `json:"payload"`
	Error   *APIError        `json:"error"`
}

// HoldingsPayload wraps the holdings list
type HoldingsPayload struct {
	Holdings []Holding `json:"holdings"`
}

// Position is a trading position as reported by Groww
type Position struct {
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

// PositionsResponse is the envelope of GET /v1/positions/user
type PositionsResponse struct {
	Status  string            `json:"status"`
	Payload *PositionsPayload `json:"payload"`
	Error   *APIError         `json:"error"`
}

// PositionsPayload wraps the positions list
type PositionsPayload struct {
	Positions []Position `json:"positions"`
}

// LTPResponse is the envelope of GET /v1/live-data/ltp; payload keys are "<EXCHANGE>_<SYMBOL>"
type LTPResponse struct {
	Status  string             `json:"status"`
	Payload map[string]float64 `json:"payload"`
	Error   *APIError          `json:"error"`
}
