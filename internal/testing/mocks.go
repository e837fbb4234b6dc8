package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shubhams167/aura/internal/domain"
)

// MockCredentialStore is an in-memory implementation of domain.CredentialStore for testing
type MockCredentialStore struct {
	mu      sync.RWMutex
	records map[string]domain.CredentialRecord
	err     error
	calls   int
}

// NewMockCredentialStore creates a new mock credential store
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		records: make(map[string]domain.CredentialRecord),
	}
}

func storeKey(userID domain.UserIdentity, broker domain.BrokerKind) string {
	return string(userID) + "|" + string(broker)
}

// SetError makes every subsequent call fail with err
func (m *MockCredentialStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many store operations were attempted
func (m *MockCredentialStore) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Put stores a record as-is
func (m *MockCredentialStore) Put(rec domain.CredentialRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[storeKey(rec.UserID, rec.Broker)] = rec
}

// Upsert inserts or replaces the record, keeping id and created_at on replace
func (m *MockCredentialStore) Upsert(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind, creds domain.EncryptedCredentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}

	now := time.Now()
	key := storeKey(userID, broker)
	rec, ok := m.records[key]
	if !ok {
		rec = domain.CredentialRecord{ID: uuid.NewString(), UserID: userID, Broker: broker, CreatedAt: now}
	}
	rec.EncryptedCredentials = creds
	rec.UpdatedAt = now
	m.records[key] = rec
	return nil
}

// Find returns the record, or nil when absent
func (m *MockCredentialStore) Find(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) (*domain.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	rec, ok := m.records[storeKey(userID, broker)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListForUser returns the user's records ordered by creation time
func (m *MockCredentialStore) ListForUser(ctx context.Context, userID domain.UserIdentity) ([]domain.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	var out []domain.CredentialRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes the record if present
func (m *MockCredentialStore) Delete(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	delete(m.records, storeKey(userID, broker))
	return nil
}

var _ domain.CredentialStore = (*MockCredentialStore)(nil)

// MockBrokerClient is a configurable implementation of domain.BrokerClient for testing
type MockBrokerClient struct {
	mu        sync.RWMutex
	token     *domain.AccessToken
	holdings  []domain.RawHolding
	positions []domain.RawPosition
	prices    map[string]float64

	TokenErr     error
	HoldingsErr  error
	PositionsErr error
	PricesErr    error

	tokenCalls  int
	priceCalls  int
	lastKey     string
	lastSecret  string
	lastSegment domain.Segment
}

// NewMockBrokerClient creates a new mock broker client that issues a fixed token
func NewMockBrokerClient() *MockBrokerClient {
	return &MockBrokerClient{
		token:  &domain.AccessToken{Token: "test-token", Active: true},
		prices: make(map[string]float64),
	}
}

// SetHoldings sets the holdings to return
func (m *MockBrokerClient) SetHoldings(h []domain.RawHolding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = h
}

// SetPositions sets the positions to return
func (m *MockBrokerClient) SetPositions(p []domain.RawPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = p
}

// SetPrices sets the last traded prices to return
func (m *MockBrokerClient) SetPrices(prices map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = prices
}

// TokenCalls returns how many handshakes were performed
func (m *MockBrokerClient) TokenCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokenCalls
}

// PriceCalls returns how many price lookups were performed
func (m *MockBrokerClient) PriceCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.priceCalls
}

// LastCredentials returns the api key and secret of the most recent handshake
func (m *MockBrokerClient) LastCredentials() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastKey, m.lastSecret
}

// LastSegment returns the segment of the most recent positions request
func (m *MockBrokerClient) LastSegment() domain.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSegment
}

func (m *MockBrokerClient) IssueToken(ctx context.Context, apiKey, apiSecret string) (*domain.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenCalls++
	m.lastKey, m.lastSecret = apiKey, apiSecret
	if m.TokenErr != nil {
		return nil, m.TokenErr
	}
	return m.token, nil
}

func (m *MockBrokerClient) FetchHoldings(ctx context.Context, token *domain.AccessToken) ([]domain.RawHolding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.HoldingsErr != nil {
		return nil, m.HoldingsErr
	}
	return m.holdings, nil
}

func (m *MockBrokerClient) FetchPositions(ctx context.Context, token *domain.AccessToken, segment domain.Segment) ([]domain.RawPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSegment = segment
	if m.PositionsErr != nil {
		return nil, m.PositionsErr
	}
	return m.positions, nil
}

func (m *MockBrokerClient) FetchLastTradedPrices(ctx context.Context, token *domain.AccessToken, symbols []string, exchange string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls++
	if m.PricesErr != nil {
		return nil, m.PricesErr
	}
	return m.prices, nil
}

var _ domain.BrokerClient = (*MockBrokerClient)(nil)

// StaticIdentityResolver resolves to a fixed identity; an empty identity means anonymous
type StaticIdentityResolver struct {
	Identity domain.UserIdentity
}

func (r StaticIdentityResolver) ResolveCurrentIdentity(ctx context.Context) (domain.UserIdentity, bool) {
	return r.Identity, r.Identity != ""
}

var _ domain.IdentityResolver = StaticIdentityResolver{}
