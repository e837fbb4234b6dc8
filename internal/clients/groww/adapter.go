package groww

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
)

// GrowwBrokerAdapter adapts groww.Client to domain.BrokerClient
type GrowwBrokerAdapter struct {
	client *Client
}

// NewGrowwBrokerAdapter creates a new Groww broker adapter owning its own client
func NewGrowwBrokerAdapter(log zerolog.Logger, opts ...Option) *GrowwBrokerAdapter {
	return &GrowwBrokerAdapter{client: NewClient(log, opts...)}
}

// IssueToken implements domain.BrokerClient
func (a *GrowwBrokerAdapter) IssueToken(ctx context.Context, apiKey, apiSecret string) (*domain.AccessToken, error) {
	tr, err := a.client.GetAccessToken(ctx, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return transformTokenToDomain(tr), nil
}

// FetchHoldings implements domain.BrokerClient
func (a *GrowwBrokerAdapter) FetchHoldings(ctx context.Context, token *domain.AccessToken) ([]domain.RawHolding, error) {
	holdings, err := a.client.GetHoldings(ctx, token.Token)
	if err != nil {
		return nil, err
	}
	return transformHoldingsToDomain(holdings), nil
}

// FetchPositions implements domain.BrokerClient
func (a *GrowwBrokerAdapter) FetchPositions(ctx context.Context, token *domain.AccessToken, segment domain.Segment) ([]domain.RawPosition, error) {
	positions, err := a.client.GetPositions(ctx, token.Token, string(segment))
	if err != nil {
		return nil, err
	}
	return transformPositionsToDomain(positions), nil
}

// FetchLastTradedPrices implements domain.BrokerClient
func (a *GrowwBrokerAdapter) FetchLastTradedPrices(ctx context.Context, token *domain.AccessToken, symbols []string, exchange string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}
	return a.client.GetLTP(ctx, token.Token, symbols, exchange)
}

var _ domain.BrokerClient = (*GrowwBrokerAdapter)(nil)
