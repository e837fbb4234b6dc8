package brokers

import (
	"errors"
	"strings"

	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/modules/portfolio"
)

// User-facing failure messages
const (
	msgNotAuthenticated  = "Not authenticated"
	msgConnectFailed     = "Failed to connect broker"
	msgUpdateFailed      = "Failed to update broker credentials"
	msgDisconnectFailed  = "Failed to disconnect broker"
	msgListFailed        = "Failed to load broker connections"
	msgHoldingsFailed    = "Failed to fetch holdings"
	msgPositionsFailed   = "Failed to fetch positions"
	msgMissingCredential = "API key and API secret are required"
)

// Result is the outcome of an orchestrator operation.
// Failures carry a human-readable message and a stable kind; Go errors never cross this boundary.
type Result struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	ErrorKind domain.ErrorKind `json:"error_kind,omitempty"`
}

// ConnectionsResult lists the connection status of every broker
type ConnectionsResult struct {
	Result
	Connections []domain.BrokerConnection `json:"connections,omitempty"`
}

// HoldingsResult is the valued holdings view of one broker account
type HoldingsResult struct {
	Result
	Broker     domain.BrokerKind           `json:"broker,omitempty"`
	Holdings   []domain.EnrichedHolding    `json:"holdings"`
	Summary    *portfolio.Summary          `json:"summary,omitempty"`
	Allocation []portfolio.AllocationSlice `json:"allocation,omitempty"`
	LivePrices bool                        `json:"live_prices"`
}

// PositionsResult is the positions view of one broker account
type PositionsResult struct {
	Result
	Broker           domain.BrokerKind    `json:"broker,omitempty"`
	Segment          domain.Segment       `json:"segment,omitempty"`
	Positions        []domain.RawPosition `json:"positions"`
	TotalRealisedPnL float64              `json:"total_realised_pnl"`
}

// PortfolioResult combines independently fetched holdings and positions
type PortfolioResult struct {
	Holdings  HoldingsResult  `json:"holdings"`
	Positions PositionsResult `json:"positions"`
}

func ok() Result {
	return Result{Success: true}
}

// failure converts err into a Result. Broker, connection and input errors carry their own
// message; store and cipher errors are replaced by fallback.
func failure(err error, fallback string) Result {
	kind := domain.Classify(err)

	msg := fallback
	switch kind {
	case domain.KindNotAuthenticated:
		msg = msgNotAuthenticated
	case domain.KindNotConnected, domain.KindBrokerAuth, domain.KindBrokerData, domain.KindInvalidInput:
		msg = detail(err)
	}

	return Result{Success: false, Error: msg, ErrorKind: kind}
}

// detail strips the leading sentinel text from a wrapped error
func detail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrNotConnected,
		domain.ErrUnsupportedBroker,
		domain.ErrBrokerAuth,
		domain.ErrBrokerData,
		domain.ErrInvalidInput,
	} {
		if errors.Is(err, sentinel) {
			if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
				return trimmed
			}
		}
	}
	return msg
}
