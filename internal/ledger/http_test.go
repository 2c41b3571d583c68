package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covenant/internal/ledger"
	dErrors "covenant/pkg/domain-errors"
)

func TestGatewayClientRecordConsent(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody ledger.ConsentRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ledger.Receipt{TxID: "tx_000001", Timestamp: time.Now()})
	}))
	defer srv.Close()

	client := ledger.NewGatewayClient(srv.URL, "secret")
	receipt, err := client.RecordConsent(context.Background(), ledger.ConsentRecord{
		ConsentID: "c-1",
		UserID:    "u-1",
		Status:    "GRANTED",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx_000001", receipt.TxID)
	assert.Equal(t, "/api/v1/consents", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "c-1", gotBody.ConsentID)
}

func TestGatewayClientTrailAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/consents/c-1/trail":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"consentId": "c-1",
				"events": []ledger.Event{
					{TxID: "tx_1", Action: "CREATED", Actor: "u-1"},
					{TxID: "tx_2", Action: "REVOKED", Actor: "u-1"},
				},
			})
		case "/api/v1/users/u-1/consents":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"consents": []ledger.ConsentRecord{{ConsentID: "c-1", UserID: "u-1"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := ledger.NewGatewayClient(srv.URL, "")

	events, err := client.GetAuditTrail(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "REVOKED", events[1].Action)

	records, err := client.QueryConsentsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c-1", records[0].ConsentID)
}

func TestGatewayClientFailuresMapToUnavailable(t *testing.T) {
	t.Run("5xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := ledger.NewGatewayClient(srv.URL, "")
		_, err := client.RecordConsent(context.Background(), ledger.ConsentRecord{ConsentID: "c-1"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // shut down before the call

		client := ledger.NewGatewayClient(srv.URL, "")
		_, err := client.GetAuditTrail(context.Background(), "c-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	})

	t.Run("timeout is bounded", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer slow.Close()

		client := ledger.NewGatewayClient(slow.URL, "", ledger.WithTimeout(20*time.Millisecond))
		start := time.Now()
		_, err := client.GetAuditTrail(context.Background(), "c-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
		assert.Less(t, time.Since(start), 150*time.Millisecond)
	})
}
