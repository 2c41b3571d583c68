package models

import (
	"time"

	dErrors "covenant/pkg/domain-errors"
)

// Consent captures a user's time-bounded permission for a named recipient to
// access one category of personal data for one stated purpose.
//
// # Ownership Invariant
//
// A consent is ALWAYS scoped by its owning UserID. The ID alone is not
// sufficient to authorize access to a record:
//   - Owner-facing queries MUST include UserID to prevent cross-user access
//   - Never expose a consent ID in URLs/APIs without validating ownership
//
// The verification path is the one exception: a data recipient holds only the
// consent ID and proves itself by matching the recorded recipient and purpose.
//
// # Lifecycle
//
// Status starts at GRANTED and only ever moves to REVOKED (explicit) or
// EXPIRED (lazily, when a verification observes ExpiryDate in the past).
// Records are never hard-deleted; retention of the full history is a
// compliance requirement.
type Consent struct {
	ID               string
	UserID           string
	DataRecipient    string
	DataCategory     Category
	Purpose          Purpose
	Status           Status
	ExpiryDate       time.Time
	RevocationReason *string
	// LedgerRef points at the mirrored ledger transaction. It is set only
	// after a successful ledger write and is advisory: validity never
	// depends on it.
	LedgerRef *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConsent creates a GRANTED consent with domain invariant checks.
func NewConsent(id, userID, dataRecipient string, category Category, purpose Purpose, expiryDate, now time.Time) (*Consent, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "consent ID required")
	}
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	if dataRecipient == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "data recipient required")
	}
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid data category")
	}
	if !purpose.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid consent purpose")
	}
	if !expiryDate.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "expiry date must be in the future")
	}
	return &Consent{
		ID:            id,
		UserID:        userID,
		DataRecipient: dataRecipient,
		DataCategory:  category,
		Purpose:       purpose,
		Status:        StatusGranted,
		ExpiryDate:    expiryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsExpired reports whether the expiry timestamp has passed, regardless of
// the persisted status.
func (c Consent) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate)
}

// EffectiveStatus reports the lifecycle state at the provided time without
// mutating the record. A GRANTED record past its expiry reads as EXPIRED even
// before the lazy transition has been persisted.
func (c Consent) EffectiveStatus(now time.Time) Status {
	if c.Status == StatusGranted && c.IsExpired(now) {
		return StatusExpired
	}
	return c.Status
}

// CanRevoke reports whether an explicit revocation is allowed. Only GRANTED
// records may be revoked; terminal states are final.
func (c Consent) CanRevoke() bool {
	return c.Status == StatusGranted
}

// StatusUpdate describes a compare-and-set status transition. The store
// applies it only when the record's current status equals the expected
// status supplied alongside, so a revoke cannot race past a lazy expiry.
type StatusUpdate struct {
	Status           Status
	RevocationReason *string
	UpdatedAt        time.Time
}

// ConsentWithStatus pairs a record with its computed effective status for
// read paths that do not persist lazy expiry.
type ConsentWithStatus struct {
	Consent *Consent
	Status  Status
}

// VerificationResult is the answer to "is this consent currently valid for
// this recipient and purpose".
type VerificationResult struct {
	ConsentID  string
	IsValid    bool
	Status     Status
	ExpiryDate time.Time
	VerifiedAt time.Time
}

// AuditTrail exposes the local and ledger record sets side by side. The two
// stores use different event identity schemes, so callers must treat
// LocalEvents as authoritative and LedgerEvents as corroborating evidence;
// no merged view is offered.
type AuditTrail struct {
	ConsentID    string
	LocalEvents  []*AuditEvent
	LedgerEvents []LedgerEvent
}

// LedgerEvent is one entry of the ledger-held audit trail for a consent.
type LedgerEvent struct {
	TxID      string
	Action    string
	Actor     string
	Details   string
	Timestamp time.Time
}
