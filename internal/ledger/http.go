package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "covenant/pkg/domain-errors"
)

const defaultGatewayTimeout = 3 * time.Second

// GatewayClient implements Client against the ledger's HTTP gateway, the
// REST facade in front of the chaincode. Every call is bounded by the
// configured timeout so a ledger outage never holds a caller's request
// hostage.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*GatewayClient)(nil)

// GatewayOption configures the GatewayClient.
type GatewayOption func(*GatewayClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(c *GatewayClient) {
		c.httpClient = client
	}
}

// WithTimeout bounds every gateway call. Zero or negative keeps the default.
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(c *GatewayClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewGatewayClient creates an HTTP-based ledger client.
func NewGatewayClient(baseURL, apiKey string, opts ...GatewayOption) *GatewayClient {
	c := &GatewayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultGatewayTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type revokeRequest struct {
	ConsentID string `json:"consentId"`
	UserID    string `json:"userId"`
	Reason    string `json:"reason"`
}

type verifyRequest struct {
	ConsentID     string `json:"consentId"`
	DataRecipient string `json:"dataRecipient"`
	Purpose       string `json:"purpose"`
}

type trailResponse struct {
	ConsentID string  `json:"consentId"`
	Events    []Event `json:"events"`
}

type queryResponse struct {
	Consents []ConsentRecord `json:"consents"`
}

// RecordConsent mirrors a freshly granted consent onto the ledger.
func (c *GatewayClient) RecordConsent(ctx context.Context, record ConsentRecord) (*Receipt, error) {
	start := time.Now()
	var receipt Receipt
	err := c.post(ctx, "/api/v1/consents", record, &receipt)
	observeCall("record_consent", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// RevokeConsent mirrors a revocation onto the ledger.
func (c *GatewayClient) RevokeConsent(ctx context.Context, consentID, userID, reason string) (*Receipt, error) {
	start := time.Now()
	var receipt Receipt
	err := c.post(ctx, fmt.Sprintf("/api/v1/consents/%s/revoke", consentID), revokeRequest{
		ConsentID: consentID,
		UserID:    userID,
		Reason:    reason,
	}, &receipt)
	observeCall("revoke_consent", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// VerifyConsent evaluates the consent on the ledger side.
func (c *GatewayClient) VerifyConsent(ctx context.Context, consentID, dataRecipient, purpose string) (*Verification, error) {
	start := time.Now()
	var verification Verification
	err := c.post(ctx, fmt.Sprintf("/api/v1/consents/%s/verify", consentID), verifyRequest{
		ConsentID:     consentID,
		DataRecipient: dataRecipient,
		Purpose:       purpose,
	}, &verification)
	observeCall("verify_consent", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

// GetAuditTrail reads the ledger-held audit trail for a consent.
func (c *GatewayClient) GetAuditTrail(ctx context.Context, consentID string) ([]Event, error) {
	start := time.Now()
	var trail trailResponse
	err := c.get(ctx, fmt.Sprintf("/api/v1/consents/%s/trail", consentID), &trail)
	observeCall("get_audit_trail", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return trail.Events, nil
}

// QueryConsentsByUser lists the ledger's mirror records for a user.
func (c *GatewayClient) QueryConsentsByUser(ctx context.Context, userID string) ([]ConsentRecord, error) {
	start := time.Now()
	var resp queryResponse
	err := c.get(ctx, fmt.Sprintf("/api/v1/users/%s/consents", userID), &resp)
	observeCall("query_consents_by_user", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return resp.Consents, nil
}

func (c *GatewayClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "encode ledger request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "build ledger request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *GatewayClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "build ledger request")
	}
	return c.do(req, out)
}

func (c *GatewayClient) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "ledger gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return dErrors.New(dErrors.CodeLedgerUnavailable,
			fmt.Sprintf("ledger gateway returned status %d", resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "decode ledger response")
	}
	return nil
}
