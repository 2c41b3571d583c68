package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"covenant/internal/consent/handler/mocks"
	"covenant/internal/consent/models"
	dErrors "covenant/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/consent-mocks.go -package=mocks Service

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

// newJSONRequest builds a request with a JSON body. A non-empty userID is
// sent as the identity header the edge proxy would assert.
func newJSONRequest(t *testing.T, method, target string, body any, userID string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return req
}

func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expectedCode, resp["error"])
}

func sampleConsent(userID string) *models.Consent {
	txID := "tx_000001"
	return &models.Consent{
		ID:            "0b54f7aa-4c57-4d36-9d1c-3a2e1f0b9c8d",
		UserID:        userID,
		DataRecipient: "acme-analytics",
		DataCategory:  models.CategoryFinancial,
		Purpose:       models.PurposeAnalytics,
		Status:        models.StatusGranted,
		ExpiryDate:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		LedgerRef:     &txID,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleGrantConsent(t *testing.T) {
	t.Run("201 - consent granted", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		consent := sampleConsent("user123")
		mockService.EXPECT().
			Grant(gomock.Any(), "user123", "acme-analytics",
				models.CategoryFinancial, models.PurposeAnalytics, consent.ExpiryDate).
			Return(consent, nil)

		req := newJSONRequest(t, http.MethodPost, "/consents", models.GrantRequest{
			DataRecipient: "acme-analytics",
			DataCategory:  "FINANCIAL",
			Purpose:       "ANALYTICS",
			ExpiryDate:    consent.ExpiryDate,
		}, "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp ConsentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, consent.ID, resp.ID)
		assert.Equal(t, "GRANTED", resp.Status)
		require.NotNil(t, resp.LedgerRef)
		assert.Equal(t, "tx_000001", *resp.LedgerRef)
	})

	t.Run("400 - malformed body", func(t *testing.T) {
		router, _ := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/consents", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "validation_failed")
	})

	t.Run("400 - missing data recipient", func(t *testing.T) {
		router, _ := newTestRouter(t)
		req := newJSONRequest(t, http.MethodPost, "/consents", models.GrantRequest{
			DataCategory: "FINANCIAL",
			Purpose:      "ANALYTICS",
			ExpiryDate:   time.Now().Add(time.Hour),
		}, "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "validation_failed")
	})

	t.Run("401 - missing identity header", func(t *testing.T) {
		router, _ := newTestRouter(t)
		req := newJSONRequest(t, http.MethodPost, "/consents", models.GrantRequest{
			DataRecipient: "acme-analytics",
			DataCategory:  "FINANCIAL",
			Purpose:       "ANALYTICS",
			ExpiryDate:    time.Now().Add(time.Hour),
		}, "")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleListConsents(t *testing.T) {
	router, mockService := newTestRouter(t)
	consent := sampleConsent("user123")
	mockService.EXPECT().
		List(gomock.Any(), "user123").
		Return([]*models.ConsentWithStatus{{Consent: consent, Status: models.StatusExpired}}, nil)

	req := newJSONRequest(t, http.MethodGet, "/consents", nil, "user123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Consents, 1)
	// Effective status wins over the stored one.
	assert.Equal(t, "EXPIRED", resp.Consents[0].Status)
}

func TestHandleGetConsent(t *testing.T) {
	t.Run("200 - owned consent", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		consent := sampleConsent("user123")
		mockService.EXPECT().
			Get(gomock.Any(), consent.ID, "user123").
			Return(&models.ConsentWithStatus{Consent: consent, Status: consent.Status}, nil)

		req := newJSONRequest(t, http.MethodGet, "/consents/"+consent.ID, nil, "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("404 - unknown or foreign consent", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		mockService.EXPECT().
			Get(gomock.Any(), "missing", "user123").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "consent not found"))

		req := newJSONRequest(t, http.MethodGet, "/consents/missing", nil, "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
		assertErrorResponse(t, w, "not_found")
	})
}

func TestHandleRevokeConsent(t *testing.T) {
	t.Run("200 - revoked with reason", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		consent := sampleConsent("user123")
		consent.Status = models.StatusRevoked
		reason := "changed mind"
		consent.RevocationReason = &reason
		mockService.EXPECT().
			Revoke(gomock.Any(), consent.ID, "user123", "changed mind").
			Return(consent, nil)

		req := newJSONRequest(t, http.MethodPost, "/consents/"+consent.ID+"/revoke",
			models.RevokeRequest{Reason: "changed mind"}, "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp ConsentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "REVOKED", resp.Status)
		require.NotNil(t, resp.RevocationReason)
		assert.Equal(t, "changed mind", *resp.RevocationReason)
	})

	t.Run("200 - empty body means no reason", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		consent := sampleConsent("user123")
		consent.Status = models.StatusRevoked
		mockService.EXPECT().
			Revoke(gomock.Any(), consent.ID, "user123", "").
			Return(consent, nil)

		req := httptest.NewRequest(http.MethodPost, "/consents/"+consent.ID+"/revoke", nil)
		req.Header.Set("X-User-ID", "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("409 - already terminal", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		mockService.EXPECT().
			Revoke(gomock.Any(), "some-id", "user123", "").
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "only active consents can be revoked"))

		req := httptest.NewRequest(http.MethodPost, "/consents/some-id/revoke", nil)
		req.Header.Set("X-User-ID", "user123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)
		assertErrorResponse(t, w, "invalid_state")
	})
}

func TestHandleVerifyConsent(t *testing.T) {
	t.Run("200 - no identity header required", func(t *testing.T) {
		router, mockService := newTestRouter(t)
		verifiedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		mockService.EXPECT().
			Verify(gomock.Any(), "some-id", "acme-analytics", models.PurposeAnalytics).
			Return(&models.VerificationResult{
				ConsentID:  "some-id",
				IsValid:    true,
				Status:     models.StatusGranted,
				ExpiryDate: verifiedAt.Add(24 * time.Hour),
				VerifiedAt: verifiedAt,
			}, nil)

		req := newJSONRequest(t, http.MethodPost, "/consents/some-id/verify", models.VerifyRequest{
			DataRecipient: "acme-analytics",
			Purpose:       "ANALYTICS",
		}, "")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp VerifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.IsValid)
		assert.Equal(t, "GRANTED", resp.Status)
	})

	t.Run("400 - missing recipient", func(t *testing.T) {
		router, _ := newTestRouter(t)
		req := newJSONRequest(t, http.MethodPost, "/consents/some-id/verify",
			models.VerifyRequest{Purpose: "ANALYTICS"}, "")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "validation_failed")
	})
}

func TestHandleGetAuditTrail(t *testing.T) {
	router, mockService := newTestRouter(t)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		GetTrail(gomock.Any(), "some-id", "user123").
		Return(&models.AuditTrail{
			ConsentID: "some-id",
			LocalEvents: []*models.AuditEvent{
				{ID: "evt-2", ConsentID: "some-id", Action: models.AuditActionRevoked, Actor: "user123", Timestamp: now},
				{ID: "evt-1", ConsentID: "some-id", Action: models.AuditActionCreated, Actor: "user123", Timestamp: now.Add(-time.Hour)},
			},
			LedgerEvents: []models.LedgerEvent{
				{TxID: "tx_000002", Action: "REVOKED", Actor: "user123", Timestamp: now},
			},
		}, nil)

	req := newJSONRequest(t, http.MethodGet, "/consents/some-id/audit-trail", nil, "user123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TrailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.LocalEvents, 2)
	assert.Equal(t, "REVOKED", resp.LocalEvents[0].Action)
	require.Len(t, resp.LedgerEvents, 1)
	assert.Equal(t, "tx_000002", resp.LedgerEvents[0].TxID)
}

func TestHandleCatalogs(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{"/consents/categories", "/consents/purposes"} {
		req := newJSONRequest(t, http.MethodGet, target, nil, "")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, target)
		var resp CatalogResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Entries, 5, target)
	}
}
