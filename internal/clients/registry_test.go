package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/domain"
	testingpkg "github.com/shubhams167/aura/internal/testing"
)

func TestRegistry_DefaultsToUnavailable(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	for _, kind := range domain.AllBrokerKinds() {
		client, err := r.ClientFor(kind)
		require.NoError(t, err)

		_, err = client.IssueToken(ctx, "k", "s")
		assert.ErrorIs(t, err, domain.ErrUnsupportedBroker)
		assert.Equal(t, domain.KindBrokerAuth, domain.Classify(err))
		assert.Contains(t, err.Error(), kind.DisplayName())

		_, err = client.FetchHoldings(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrUnsupportedBroker)
		_, err = client.FetchPositions(ctx, nil, domain.SegmentCash)
		assert.ErrorIs(t, err, domain.ErrUnsupportedBroker)
		_, err = client.FetchLastTradedPrices(ctx, nil, []string{"A"}, "NSE")
		assert.ErrorIs(t, err, domain.ErrUnsupportedBroker)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	mock := testingpkg.NewMockBrokerClient()
	r.Register(domain.BrokerGroww, mock)

	client, err := r.ClientFor(domain.BrokerGroww)
	require.NoError(t, err)
	assert.Same(t, mock, client)

	other, err := r.ClientFor(domain.BrokerUpstox)
	require.NoError(t, err)
	assert.IsType(t, UnavailableClient{}, other)
}

func TestRegistry_UnknownKind(t *testing.T) {
	_, err := NewRegistry().ClientFor("robinhood")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
