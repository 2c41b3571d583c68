package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"covenant/internal/audit"
	"covenant/internal/consent/models"
	"covenant/internal/consent/store"
	"covenant/internal/consent/tracer"
	dErrors "covenant/pkg/domain-errors"
)

// Verify answers whether a consent currently authorizes the given recipient
// and purpose. It applies expiry-on-read: a GRANTED consent past its expiry
// is transitioned to EXPIRED and the transition persisted before validity is
// evaluated, so "expired but still marked GRANTED" is never observable after
// this call returns. Every attempt, successful or not, appends a
// VERIFICATION_ATTEMPT audit event.
func (s *Service) Verify(ctx context.Context, consentID, dataRecipient string, purpose models.Purpose) (*models.VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrConsentID, consentID),
		tracer.String(tracer.AttrPurpose, string(purpose)),
	)
	var opErr error
	defer func() { span.End(opErr) }()

	if consentID == "" {
		opErr = dErrors.New(dErrors.CodeValidation, "consent ID required")
		return nil, opErr
	}
	if dataRecipient == "" {
		opErr = dErrors.New(dErrors.CodeValidation, "data recipient required")
		return nil, opErr
	}
	if !purpose.IsValid() {
		opErr = dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid purpose: %s", purpose))
		return nil, opErr
	}

	consent, err := s.store.GetConsentByID(ctx, consentID)
	if err != nil {
		opErr = mapLookupError(err, "failed to read consent")
		return nil, opErr
	}

	now := time.Now()
	isExpired := consent.IsExpired(now)

	if isExpired && consent.Status == models.StatusGranted {
		consent, err = s.persistLazyExpiry(ctx, span, consent, now)
		if err != nil {
			opErr = err
			return nil, err
		}
	}

	valid := consent.Status == models.StatusGranted &&
		!isExpired &&
		consent.DataRecipient == dataRecipient &&
		consent.Purpose == purpose

	outcome := "denied"
	if valid {
		outcome = "valid"
	}
	details := fmt.Sprintf("Verification by %s for purpose %s: %s", dataRecipient, purpose, outcome)
	if err := s.appendAuditEvent(ctx, consentID, models.AuditActionVerificationAttempt, dataRecipient, details); err != nil {
		opErr = err
		return nil, err
	}

	s.emitCompliance(ctx, audit.Event{
		ConsentID: consentID,
		UserID:    consent.UserID,
		Action:    string(models.AuditActionVerificationAttempt),
		Actor:     dataRecipient,
		Details:   details,
	})
	if s.metrics != nil {
		if valid {
			s.metrics.IncrementVerificationsPassed(string(purpose))
		} else {
			s.metrics.IncrementVerificationsFailed(string(purpose))
		}
	}
	span.SetAttributes(
		tracer.Bool(tracer.AttrValid, valid),
		tracer.String(tracer.AttrStatus, string(consent.Status)),
	)

	return &models.VerificationResult{
		ConsentID:  consentID,
		IsValid:    valid,
		Status:     consent.Status,
		ExpiryDate: consent.ExpiryDate,
		VerifiedAt: now,
	}, nil
}

// persistLazyExpiry lands the GRANTED to EXPIRED transition through the
// store's compare-and-set. Exactly one verifier wins the race and appends the
// single EXPIRED audit event; losers re-read whatever terminal state the
// winner left behind.
func (s *Service) persistLazyExpiry(ctx context.Context, span tracer.Span, consent *models.Consent, now time.Time) (*models.Consent, error) {
	span.AddEvent(tracer.EventLazyExpiry)
	updated, err := s.store.UpdateConsentStatus(ctx, consent.ID, models.StatusGranted, models.StatusUpdate{
		Status:    models.StatusExpired,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			// Another writer landed a terminal transition first; its audit
			// event stands and we do not add one.
			refreshed, readErr := s.store.GetConsentByID(ctx, consent.ID)
			if readErr != nil {
				return nil, mapLookupError(readErr, "failed to re-read consent")
			}
			return refreshed, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to persist consent expiry")
	}

	if err := s.appendAuditEvent(ctx, consent.ID, models.AuditActionExpired, models.ActorSystem, "Consent expired"); err != nil {
		return nil, err
	}
	s.emitCompliance(ctx, audit.Event{
		ConsentID: consent.ID,
		UserID:    consent.UserID,
		Action:    string(models.AuditActionExpired),
		Actor:     models.ActorSystem,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentsExpired()
	}
	return updated, nil
}
