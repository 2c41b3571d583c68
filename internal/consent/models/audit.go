package models

import "time"

// AuditAction describes what operation occurred on a consent.
type AuditAction string

const (
	AuditActionCreated             AuditAction = "CREATED"              // Consent granted by user
	AuditActionRevoked             AuditAction = "REVOKED"              // Consent revoked by user
	AuditActionVerificationAttempt AuditAction = "VERIFICATION_ATTEMPT" // Recipient asked whether consent is valid
	AuditActionExpired             AuditAction = "EXPIRED"              // Lazy expiry persisted during verification
	AuditActionAuditAccess         AuditAction = "AUDIT_ACCESS"         // Owner read the audit trail
)

// ActorSystem marks events produced by the service itself rather than a user
// or recipient, such as the lazy expiry transition.
const ActorSystem = "SYSTEM"

// AuditEvent is an immutable record of one action taken against a consent.
// Events are append-only: they are never mutated or deleted, and they outlive
// every state the consent passes through.
type AuditEvent struct {
	ID        string
	ConsentID string
	Action    AuditAction
	Actor     string
	Details   string
	Timestamp time.Time
}
