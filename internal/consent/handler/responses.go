package handler

import (
	"time"

	"covenant/internal/consent/models"
)

// ConsentResponse is the boundary representation of a consent record. The
// status field carries the effective status at read time, which may differ
// from the stored one for grants past expiry awaiting the lazy transition.
type ConsentResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	DataRecipient    string    `json:"dataRecipient"`
	DataCategory     string    `json:"dataCategory"`
	Purpose          string    `json:"purpose"`
	Status           string    `json:"status"`
	ExpiryDate       time.Time `json:"expiryDate"`
	RevocationReason *string   `json:"revocationReason,omitempty"`
	LedgerRef        *string   `json:"ledgerRef,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ListResponse wraps a user's consents.
type ListResponse struct {
	Consents []*ConsentResponse `json:"consents"`
}

// VerifyResponse answers a recipient's validity check.
type VerifyResponse struct {
	ConsentID  string    `json:"consentId"`
	IsValid    bool      `json:"isValid"`
	Status     string    `json:"status"`
	ExpiryDate time.Time `json:"expiryDate"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

// AuditEventResponse is one locally held audit event.
type AuditEventResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEventResponse is one ledger-held audit event.
type LedgerEventResponse struct {
	TxID      string    `json:"txId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// TrailResponse returns the two audit record sets side by side, unmerged.
type TrailResponse struct {
	ConsentID    string                 `json:"consentId"`
	LocalEvents  []*AuditEventResponse  `json:"localEvents"`
	LedgerEvents []*LedgerEventResponse `json:"ledgerEvents"`
}

// CatalogResponse wraps the category or purpose catalog.
type CatalogResponse struct {
	Entries []models.CatalogEntry `json:"entries"`
}

func formatConsent(consent *models.Consent, status models.Status) *ConsentResponse {
	return &ConsentResponse{
		ID:               consent.ID,
		UserID:           consent.UserID,
		DataRecipient:    consent.DataRecipient,
		DataCategory:     string(consent.DataCategory),
		Purpose:          string(consent.Purpose),
		Status:           string(status),
		ExpiryDate:       consent.ExpiryDate,
		RevocationReason: consent.RevocationReason,
		LedgerRef:        consent.LedgerRef,
		CreatedAt:        consent.CreatedAt,
		UpdatedAt:        consent.UpdatedAt,
	}
}

func formatConsents(records []*models.ConsentWithStatus) []*ConsentResponse {
	resp := make([]*ConsentResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, formatConsent(record.Consent, record.Status))
	}
	return resp
}

func formatTrail(trail *models.AuditTrail) *TrailResponse {
	resp := &TrailResponse{
		ConsentID:    trail.ConsentID,
		LocalEvents:  make([]*AuditEventResponse, 0, len(trail.LocalEvents)),
		LedgerEvents: make([]*LedgerEventResponse, 0, len(trail.LedgerEvents)),
	}
	for _, event := range trail.LocalEvents {
		resp.LocalEvents = append(resp.LocalEvents, &AuditEventResponse{
			ID:        event.ID,
			Action:    string(event.Action),
			Actor:     event.Actor,
			Details:   event.Details,
			Timestamp: event.Timestamp,
		})
	}
	for _, event := range trail.LedgerEvents {
		resp.LedgerEvents = append(resp.LedgerEvents, &LedgerEventResponse{
			TxID:      event.TxID,
			Action:    event.Action,
			Actor:     event.Actor,
			Details:   event.Details,
			Timestamp: event.Timestamp,
		})
	}
	return resp
}
