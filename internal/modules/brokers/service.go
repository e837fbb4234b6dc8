// Package brokers links brokerage accounts to users and serves their portfolio views.
package brokers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/metrics"
	"github.com/shubhams167/aura/internal/modules/portfolio"
)

// Service orchestrates credential storage, broker sessions and portfolio valuation.
// Every operation acts for the identity resolved from the context and nothing else.
type Service struct {
	resolver domain.IdentityResolver
	store    domain.CredentialStore
	cipher   domain.CredentialCipher
	provider domain.BrokerClientProvider
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewService creates a new broker service
func NewService(
	resolver domain.IdentityResolver,
	store domain.CredentialStore,
	cipher domain.CredentialCipher,
	provider domain.BrokerClientProvider,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		resolver: resolver,
		store:    store,
		cipher:   cipher,
		provider: provider,
		metrics:  m,
		log:      log.With().Str("service", "brokers").Logger(),
	}
}

// session is a decrypted, handshaken broker session for one operation
type session struct {
	broker domain.BrokerKind
	client domain.BrokerClient
	token  *domain.AccessToken
}

// Connect stores encrypted credentials for the broker. The credentials are not
// checked against the broker; a bad pair surfaces on the first data read.
func (s *Service) Connect(ctx context.Context, broker domain.BrokerKind, apiKey, apiSecret string) Result {
	return s.storeCredentials(ctx, "connect", broker, apiKey, apiSecret, msgConnectFailed)
}

// Update replaces the stored credentials for the broker
func (s *Service) Update(ctx context.Context, broker domain.BrokerKind, apiKey, apiSecret string) Result {
	return s.storeCredentials(ctx, "update", broker, apiKey, apiSecret, msgUpdateFailed)
}

func (s *Service) storeCredentials(ctx context.Context, op string, broker domain.BrokerKind, apiKey, apiSecret, fallback string) Result {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return failure(domain.ErrNotAuthenticated, fallback)
	}

	broker, err := domain.ParseBrokerKind(string(broker))
	if err != nil {
		return failure(err, fallback)
	}

	err = s.upsert(ctx, userID, broker, apiKey, apiSecret)
	s.metrics.IncCredentialOperation(op, err)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("user_id", string(userID)).
			Str("broker", string(broker)).
			Str("operation", op).
			Msg("Failed to store broker credentials")
		return failure(err, fallback)
	}

	s.log.Info().
		Str("user_id", string(userID)).
		Str("broker", string(broker)).
		Str("operation", op).
		Msg("Broker credentials stored")
	return ok()
}

func (s *Service) upsert(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind, apiKey, apiSecret string) error {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msgMissingCredential)
	}

	creds, err := s.cipher.EncryptCredentialPair(apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	return s.store.Upsert(ctx, userID, broker, *creds)
}

// Disconnect removes the stored credentials. Disconnecting a broker that was never connected succeeds.
func (s *Service) Disconnect(ctx context.Context, broker domain.BrokerKind) Result {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return failure(domain.ErrNotAuthenticated, msgDisconnectFailed)
	}

	broker, err := domain.ParseBrokerKind(string(broker))
	if err != nil {
		return failure(err, msgDisconnectFailed)
	}

	err = s.store.Delete(ctx, userID, broker)
	s.metrics.IncCredentialOperation("disconnect", err)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", string(userID)).Str("broker", string(broker)).Msg("Failed to disconnect broker")
		return failure(err, msgDisconnectFailed)
	}

	s.log.Info().Str("user_id", string(userID)).Str("broker", string(broker)).Msg("Broker disconnected")
	return ok()
}

// ListConnections reports, for every known broker, whether the user has stored credentials
func (s *Service) ListConnections(ctx context.Context) ConnectionsResult {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return ConnectionsResult{Result: failure(domain.ErrNotAuthenticated, msgListFailed)}
	}

	records, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", string(userID)).Msg("Failed to list broker connections")
		return ConnectionsResult{Result: failure(err, msgListFailed)}
	}

	byBroker := make(map[domain.BrokerKind]domain.CredentialRecord, len(records))
	for _, rec := range records {
		byBroker[rec.Broker] = rec
	}

	kinds := domain.AllBrokerKinds()
	connections := make([]domain.BrokerConnection, len(kinds))
	for i, kind := range kinds {
		connections[i] = domain.BrokerConnection{Broker: kind}
		if rec, found := byBroker[kind]; found {
			connectedAt := rec.CreatedAt
			connections[i].Connected = true
			connections[i].ConnectedAt = &connectedAt
		}
	}

	return ConnectionsResult{Result: ok(), Connections: connections}
}

// GetEnrichedHoldings returns the broker account's holdings valued at live prices.
// A failed price lookup is not an error: holdings are then valued at their average price.
func (s *Service) GetEnrichedHoldings(ctx context.Context, broker domain.BrokerKind) HoldingsResult {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return HoldingsResult{Result: failure(domain.ErrNotAuthenticated, msgHoldingsFailed)}
	}

	sess, err := s.openSession(ctx, userID, broker)
	if err != nil {
		return HoldingsResult{Result: failure(err, msgHoldingsFailed)}
	}
	return s.holdings(ctx, userID, sess)
}

// GetPositions returns the broker account's positions for a segment, unmodified
func (s *Service) GetPositions(ctx context.Context, broker domain.BrokerKind, segment domain.Segment) PositionsResult {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return PositionsResult{Result: failure(domain.ErrNotAuthenticated, msgPositionsFailed)}
	}

	sess, err := s.openSession(ctx, userID, broker)
	if err != nil {
		return PositionsResult{Result: failure(err, msgPositionsFailed)}
	}
	return s.positions(ctx, userID, sess, segment)
}

// GetPortfolio fetches holdings and positions concurrently over one broker session.
// Each half succeeds or fails on its own.
func (s *Service) GetPortfolio(ctx context.Context, broker domain.BrokerKind, segment domain.Segment) PortfolioResult {
	userID, authed := s.resolver.ResolveCurrentIdentity(ctx)
	if !authed {
		return PortfolioResult{
			Holdings:  HoldingsResult{Result: failure(domain.ErrNotAuthenticated, msgHoldingsFailed)},
			Positions: PositionsResult{Result: failure(domain.ErrNotAuthenticated, msgPositionsFailed)},
		}
	}

	sess, err := s.openSession(ctx, userID, broker)
	if err != nil {
		return PortfolioResult{
			Holdings:  HoldingsResult{Result: failure(err, msgHoldingsFailed)},
			Positions: PositionsResult{Result: failure(err, msgPositionsFailed)},
		}
	}

	var (
		result PortfolioResult
		eg     errgroup.Group
	)
	eg.Go(func() error {
		result.Holdings = s.holdings(ctx, userID, sess)
		return nil
	})
	eg.Go(func() error {
		result.Positions = s.positions(ctx, userID, sess, segment)
		return nil
	})
	_ = eg.Wait()

	return result
}

// openSession loads and decrypts the stored credentials and performs a fresh handshake.
// Absent credentials fail with domain.ErrNotConnected before any network call.
func (s *Service) openSession(ctx context.Context, userID domain.UserIdentity, broker domain.BrokerKind) (*session, error) {
	log := s.log.With().Str("user_id", string(userID)).Str("broker", string(broker)).Logger()

	rec, err := s.store.Find(ctx, userID, broker)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load broker credentials")
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: Please connect your %s account first", domain.ErrNotConnected, broker.DisplayName())
	}

	apiKey, apiSecret, err := s.cipher.DecryptCredentialPair(rec.EncryptedCredentials)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decrypt broker credentials")
		return nil, err
	}

	client, err := s.provider.ClientFor(broker)
	if err != nil {
		return nil, err
	}

	token, err := client.IssueToken(ctx, apiKey, apiSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Broker handshake failed")
		return nil, err
	}

	return &session{broker: broker, client: client, token: token}, nil
}

func (s *Service) holdings(ctx context.Context, userID domain.UserIdentity, sess *session) HoldingsResult {
	log := s.log.With().Str("user_id", string(userID)).Str("broker", string(sess.broker)).Logger()

	raw, err := sess.client.FetchHoldings(ctx, sess.token)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch holdings")
		return HoldingsResult{Result: failure(err, msgHoldingsFailed)}
	}

	prices := map[string]float64{}
	livePrices := false
	if len(raw) > 0 {
		symbols := make([]string, len(raw))
		for i, h := range raw {
			symbols[i] = h.TradingSymbol
		}

		fetched, err := sess.client.FetchLastTradedPrices(ctx, sess.token, symbols, domain.DefaultExchange)
		if err != nil {
			log.Warn().Err(err).Int("symbols", len(symbols)).Msg("Live prices unavailable, valuing at average price")
			s.metrics.IncPriceFallback(string(sess.broker))
		} else {
			prices = fetched
			livePrices = true
		}
	}

	enriched := portfolio.Enrich(raw, prices)
	summary := portfolio.Summarize(enriched)

	return HoldingsResult{
		Result:     ok(),
		Broker:     sess.broker,
		Holdings:   enriched,
		Summary:    &summary,
		Allocation: portfolio.Allocation(enriched),
		LivePrices: livePrices,
	}
}

func (s *Service) positions(ctx context.Context, userID domain.UserIdentity, sess *session, segment domain.Segment) PositionsResult {
	if segment == "" {
		segment = domain.SegmentCash
	}

	positions, err := sess.client.FetchPositions(ctx, sess.token, segment)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("user_id", string(userID)).
			Str("broker", string(sess.broker)).
			Str("segment", string(segment)).
			Msg("Failed to fetch positions")
		return PositionsResult{Result: failure(err, msgPositionsFailed)}
	}
	if positions == nil {
		positions = []domain.RawPosition{}
	}

	return PositionsResult{
		Result:           ok(),
		Broker:           sess.broker,
		Segment:          segment,
		Positions:        positions,
		TotalRealisedPnL: portfolio.TotalRealisedPnL(positions),
	}
}
