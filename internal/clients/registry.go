// Package clients dispatches broker operations to the client registered for each BrokerKind.
package clients

import (
	"context"
	"fmt"
	"sync"

	"github.com/shubhams167/aura/internal/domain"
)

// Registry maps broker kinds to their clients
type Registry struct {
	mu      sync.RWMutex
	clients map[domain.BrokerKind]domain.BrokerClient
}

// NewRegistry creates a registry in which every known broker is registered
// as not yet available. Real integrations replace entries with Register.
func NewRegistry() *Registry {
	r := &Registry{clients: make(map[domain.BrokerKind]domain.BrokerClient)}
	for _, kind := range domain.AllBrokerKinds() {
		r.clients[kind] = UnavailableClient{Kind: kind}
	}
	return r
}

// Register installs the client for a broker kind
func (r *Registry) Register(kind domain.BrokerKind, client domain.BrokerClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[kind] = client
}

// ClientFor implements domain.BrokerClientProvider
func (r *Registry) ClientFor(kind domain.BrokerKind) (domain.BrokerClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown broker %q", domain.ErrInvalidInput, kind)
	}
	return client, nil
}

var _ domain.BrokerClientProvider = (*Registry)(nil)

// UnavailableClient stands in for a broker whose integration does not exist yet.
// Every operation fails with domain.ErrUnsupportedBroker.
type UnavailableClient struct {
	Kind domain.BrokerKind
}

func (c UnavailableClient) err() error {
	return fmt.Errorf("%w: %s integration is not available yet", domain.ErrUnsupportedBroker, c.Kind.DisplayName())
}

func (c UnavailableClient) IssueToken(ctx context.Context, apiKey, apiSecret string) (*domain.AccessToken, error) {
	return nil, c.err()
}

func (c UnavailableClient) FetchHoldings(ctx context.Context, token *domain.AccessToken) ([]domain.RawHolding, error) {
	return nil, c.err()
}

func (c UnavailableClient) FetchPositions(ctx context.Context, token *domain.AccessToken, segment domain.Segment) ([]domain.RawPosition, error) {
	return nil, c.err()
}

func (c UnavailableClient) FetchLastTradedPrices(ctx context.Context, token *domain.AccessToken, symbols []string, exchange string) (map[string]float64, error) {
	return nil, c.err()
}

var _ domain.BrokerClient = UnavailableClient{}
