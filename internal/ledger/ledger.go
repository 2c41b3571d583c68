// Package ledger abstracts the append-only, tamper-evident record store that
// witnesses consent state changes. The local consent store stays
// authoritative on conflict: every call here is best-effort from the caller's
// point of view, and implementations signal outages with CodeLedgerUnavailable
// errors that call sites absorb rather than propagate.
package ledger

import (
	"context"
	"time"

	dErrors "covenant/pkg/domain-errors"
)

// ErrUnavailable is the sentinel for any failure to reach or use the ledger.
// Match with errors.Is or dErrors.HasCode(err, CodeLedgerUnavailable).
var ErrUnavailable = dErrors.New(dErrors.CodeLedgerUnavailable, "ledger unavailable")

// ConsentRecord mirrors the key fields of a consent onto the ledger.
type ConsentRecord struct {
	ConsentID     string    `json:"consentId"`
	UserID        string    `json:"userId"`
	DataRecipient string    `json:"dataRecipient"`
	DataCategory  string    `json:"dataCategory"`
	Purpose       string    `json:"purpose"`
	Status        string    `json:"status"`
	ExpiryDate    time.Time `json:"expiryDate"`
}

// Receipt acknowledges a committed ledger transaction.
type Receipt struct {
	TxID      string    `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is one entry of the ledger-held audit trail for a consent.
type Event struct {
	TxID      string    `json:"txId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Verification is the ledger's own answer to a validity query. Corroborating
// evidence only; the local store decides validity.
type Verification struct {
	ConsentID  string    `json:"consentId"`
	Valid      bool      `json:"valid"`
	Status     string    `json:"status"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

// Client is the boundary contract to the ledger. Consent IDs are idempotent
// identifiers, so callers may safely re-submit after a failure.
//
// TODO: retry/backoff around transient outages once the gateway exposes
// distinct error classes for them; today every failure maps to ErrUnavailable
// and the caller moves on.
type Client interface {
	RecordConsent(ctx context.Context, record ConsentRecord) (*Receipt, error)
	RevokeConsent(ctx context.Context, consentID, userID, reason string) (*Receipt, error)
	VerifyConsent(ctx context.Context, consentID, dataRecipient, purpose string) (*Verification, error)
	GetAuditTrail(ctx context.Context, consentID string) ([]Event, error)
	QueryConsentsByUser(ctx context.Context, userID string) ([]ConsentRecord, error)
}
