package groww

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/metrics"
)

var fixedNow = func() time.Time { return time.Unix(1700000000, 0) }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithClock(fixedNow), WithTimeout(2 * time.Second)}, opts...)
	return NewClient(zerolog.Nop(), opts...)
}

func TestGenerateChecksum(t *testing.T) {
	assert.Equal(t,
		"08f1f88c6162bdb1a211202be8da9b392bfcb8f9e003b0b7f33d11d8155d91e5",
		GenerateChecksum("secretXYZ", 1700000000))
	assert.Equal(t,
		"d75d7714ac0e0f3b3ae64b6b9c85f5cb9e56171927f849b1e0a86b90bcdb4521",
		GenerateChecksum("my_api_secret", 1700000000))

	sum := GenerateChecksum("", 0)
	assert.Len(t, sum, 64)
	assert.Equal(t, strings.ToLower(sum), sum)
}

func TestClient_GetAccessToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, routeToken, r.URL.Path)
			assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			var body TokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "approval", body.KeyType)
			assert.Equal(t, "1700000000", body.Timestamp)
			assert.Equal(t, GenerateChecksum("secretXYZ", 1700000000), body.Checksum)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"tok-123","tokenRefId":"ref-1","sessionName":"s","expiry":"2024-01-01T06:00:00","isActive":true}`))
		})

		token, err := client.GetAccessToken(context.Background(), "key-1", "secretXYZ")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token.Token)
		assert.Equal(t, "ref-1", token.TokenRefID)
		assert.True(t, token.IsActive)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`invalid api key`))
		})

		token, err := client.GetAccessToken(context.Background(), "bad", "bad")
		assert.Nil(t, token)
		require.ErrorIs(t, err, domain.ErrBrokerAuth)
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("missing token field", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"isActive":false}`))
		})

		_, err := client.GetAccessToken(context.Background(), "k", "s")
		assert.ErrorIs(t, err, domain.ErrBrokerAuth)
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}, WithTimeout(50*time.Millisecond))

		_, err := client.GetAccessToken(context.Background(), "k", "s")
		assert.ErrorIs(t, err, domain.ErrBrokerAuth)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient(zerolog.Nop(), WithBaseURL("http://127.0.0.1:1"), WithTimeout(time.Second))
		_, err := client.GetAccessToken(context.Background(), "k", "s")
		assert.ErrorIs(t, err, domain.ErrBrokerAuth)
	})

	t.Run("long body is truncated", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
		})

		_, err := client.GetAccessToken(context.Background(), "k", "s")
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 700)
	})
}

func TestClient_GetHoldings(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, routeHoldings, r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "1.0", r.Header.Get("X-API-VERSION"))

			_, _ = w.Write([]byte(`{"status":"SUCCESS","payload":{"holdings":[
				{"isin":"INE002A01018","trading_symbol":"RELIANCE","quantity":10,"average_price":100,"groww_locked_quantity":2}
			]}}`))
		})

		holdings, err := client.GetHoldings(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		assert.Equal(t, "RELIANCE", holdings[0].TradingSymbol)
		assert.Equal(t, 10.0, holdings[0].Quantity)
		assert.Equal(t, 2.0, holdings[0].GrowwLockedQuantity)
	})

	t.Run("failure envelope with message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"FAILURE","error":{"code":"GA001","message":"Session expired"}}`))
		})

		_, err := client.GetHoldings(context.Background(), "tok")
		require.ErrorIs(t, err, domain.ErrBrokerData)
		assert.Contains(t, err.Error(), "Session expired")
	})

	t.Run("failure envelope without message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"FAILURE"}`))
		})

		_, err := client.GetHoldings(context.Background(), "tok")
		require.ErrorIs(t, err, domain.ErrBrokerData)
		assert.Contains(t, err.Error(), "Failed to fetch holdings")
	})

	t.Run("non-2xx extracts error message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"status":"FAILURE","error":{"message":"Access forbidden"}}`))
		})

		_, err := client.GetHoldings(context.Background(), "tok")
		require.ErrorIs(t, err, domain.ErrBrokerData)
		assert.Contains(t, err.Error(), "Access forbidden")
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := client.GetHoldings(context.Background(), "tok")
		assert.ErrorIs(t, err, domain.ErrBrokerData)
	})

	t.Run("empty payload", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"SUCCESS"}`))
		})

		holdings, err := client.GetHoldings(context.Background(), "tok")
		require.NoError(t, err)
		assert.Empty(t, holdings)
	})
}

func TestClient_GetPositions(t *testing.T) {
	var segment atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, routePositions, r.URL.Path)
		segment.Store(r.URL.Query().Get("segment"))
		_, _ = w.Write([]byte(`{"status":"SUCCESS","payload":{"positions":[
			{"trading_symbol":"NIFTY24JANFUT","exchange":"NSE","product":"NRML","quantity":50,"realised_pnl":1250.5}
		]}}`))
	})

	positions, err := client.GetPositions(context.Background(), "tok", "FNO")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "FNO", segment.Load())
	assert.Equal(t, 1250.5, positions[0].RealisedPnL)

	_, err = client.GetPositions(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "CASH", segment.Load())
}

func TestClient_GetLTP(t *testing.T) {
	t.Run("batched request strips exchange prefix", func(t *testing.T) {
		var calls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, routeLTP, r.URL.Path)
			assert.Equal(t, "CASH", r.URL.Query().Get("segment"))
			assert.Equal(t, "NSE_RELIANCE,NSE_TCS", r.URL.Query().Get("exchange_symbols"))
			assert.Contains(t, r.URL.RawQuery, "NSE_RELIANCE%2CNSE_TCS")
			_, _ = w.Write([]byte(`{"status":"SUCCESS","payload":{"NSE_RELIANCE":2850.5,"NSE_TCS":3900}}`))
		})

		prices, err := client.GetLTP(context.Background(), "tok", []string{"RELIANCE", "TCS"}, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"RELIANCE": 2850.5, "TCS": 3900}, prices)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("empty symbols performs no I/O", func(t *testing.T) {
		var calls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		})

		prices, err := client.GetLTP(context.Background(), "tok", nil, "NSE")
		require.NoError(t, err)
		assert.Empty(t, prices)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("failure envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"FAILURE","error":{}}`))
		})

		_, err := client.GetLTP(context.Background(), "tok", []string{"TCS"}, "NSE")
		require.ErrorIs(t, err, domain.ErrBrokerData)
		assert.Contains(t, err.Error(), "Failed to fetch LTP")
	})
}

func TestClient_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithMetrics(m))

	_, _ = client.GetHoldings(context.Background(), "tok")
	assert.Equal(t, 1, testutil.CollectAndCount(m.BrokerRequestDur, "aura_broker_request_duration_seconds"))
}

func TestDiagnostic(t *testing.T) {
	assert.Equal(t, "nested", diagnostic([]byte(`{"error":{"message":"nested"}}`)))
	assert.Equal(t, "flat", diagnostic([]byte(`{"message":"flat"}`)))
	assert.Equal(t, "plain", diagnostic([]byte(`{"error":"plain"}`)))
	assert.Equal(t, "not json", diagnostic([]byte(`not json`)))
	assert.Equal(t, strings.Repeat("a", maxDiagnosticLen)+"...", diagnostic([]byte(strings.Repeat("a", 900))))
}
