package store

import (
	"context"
	"errors"

	"covenant/internal/consent/models"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return ErrStatusConflict when a compare-and-set transition loses a race
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a duplicate primary key on create.
	ErrConflict = errors.New("record already exists")
	// ErrStatusConflict signals that a compare-and-set status update found a
	// different current status than expected. The caller lost a race against
	// another writer and must re-read before deciding anything.
	ErrStatusConflict = errors.New("consent status changed concurrently")
)

// Store is the authoritative persistence contract for consents and their
// audit events. All writes are single-entity transactions; the store is the
// serialization point for concurrent operations on one consent.
type Store interface {
	// CreateConsent persists a new consent record.
	CreateConsent(ctx context.Context, consent *models.Consent) error

	// GetConsentByID loads a consent without ownership scoping. Reserved for
	// the verification path, where the caller is a data recipient.
	GetConsentByID(ctx context.Context, consentID string) (*models.Consent, error)

	// GetConsentForUser loads a consent scoped by its owner. Returns
	// ErrNotFound when the record is absent or owned by a different user.
	GetConsentForUser(ctx context.Context, consentID, userID string) (*models.Consent, error)

	// ListByUser returns all consents owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Consent, error)

	// UpdateConsentStatus applies a terminal-state transition only when the
	// record's current status equals expected, returning the updated record.
	UpdateConsentStatus(ctx context.Context, consentID string, expected models.Status, update models.StatusUpdate) (*models.Consent, error)

	// SetLedgerRef records the ledger transaction reference after a
	// successful mirror write. Advisory metadata, applied unconditionally.
	SetLedgerRef(ctx context.Context, consentID, ledgerRef string) error

	// AppendAuditEvent appends one immutable audit event for a consent.
	AppendAuditEvent(ctx context.Context, event *models.AuditEvent) error

	// ListAuditEvents returns a consent's audit events, newest first.
	ListAuditEvents(ctx context.Context, consentID string) ([]*models.AuditEvent, error)
}
