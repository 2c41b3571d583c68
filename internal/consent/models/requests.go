package models

import "time"

// GrantRequest is the inbound payload for granting a consent.
type GrantRequest struct {
	DataRecipient string    `json:"dataRecipient" validate:"required,notblank,max=255"`
	DataCategory  string    `json:"dataCategory" validate:"required,notblank"`
	Purpose       string    `json:"purpose" validate:"required,notblank"`
	ExpiryDate    time.Time `json:"expiryDate" validate:"required"`
}

// RevokeRequest is the inbound payload for revoking a consent.
type RevokeRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// VerifyRequest is the inbound payload for a recipient's validity check.
type VerifyRequest struct {
	DataRecipient string `json:"dataRecipient" validate:"required,notblank,max=255"`
	Purpose       string `json:"purpose" validate:"required,notblank"`
}
