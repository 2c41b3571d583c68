package service_test

import (
	"time"

	"covenant/internal/consent/models"
	dErrors "covenant/pkg/domain-errors"
)

func (s *ServiceSuite) createStoredConsent(userID string, status models.Status, expiry time.Time) *models.Consent {
	consent := &models.Consent{
		ID:            "7c1f4b3e-1c2d-4e5f-8a9b-0c1d2e3f4a5b",
		UserID:        userID,
		DataRecipient: "acme-analytics",
		DataCategory:  models.CategoryFinancial,
		Purpose:       models.PurposeAnalytics,
		Status:        status,
		ExpiryDate:    expiry,
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now().Add(-time.Hour),
	}
	s.Require().NoError(s.store.CreateConsent(s.ctx, consent))
	return consent
}

func (s *ServiceSuite) TestVerifyActiveConsentIsValid() {
	consent := s.grant("user-1")

	result, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(models.StatusGranted, result.Status)
	s.Equal(consent.ID, result.ConsentID)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.AuditActionVerificationAttempt, events[0].Action)
	s.Equal("acme-analytics", events[0].Actor)
	s.Contains(events[0].Details, "valid")
}

func (s *ServiceSuite) TestVerifyIsIdempotentOnState() {
	consent := s.grant("user-1")

	first, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	second, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)

	s.Equal(first.IsValid, second.IsValid)
	s.Equal(first.Status, second.Status)

	// State unchanged, yet both attempts are on the record.
	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	attempts := 0
	for _, event := range events {
		if event.Action == models.AuditActionVerificationAttempt {
			attempts++
		}
	}
	s.Equal(2, attempts)
}

func (s *ServiceSuite) TestVerifyRecipientMismatch() {
	consent := s.grant("user-1")

	result, err := s.service.Verify(s.ctx, consent.ID, "someone-else", models.PurposeAnalytics)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(models.StatusGranted, result.Status)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal(models.AuditActionVerificationAttempt, events[0].Action)
	s.Equal("someone-else", events[0].Actor)
	s.Contains(events[0].Details, "denied")
}

func (s *ServiceSuite) TestVerifyPurposeMismatch() {
	consent := s.grant("user-1")

	result, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeMarketing)
	s.Require().NoError(err)
	s.False(result.IsValid)
}

func (s *ServiceSuite) TestVerifyRevokedConsent() {
	consent := s.grant("user-1")
	_, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "")
	s.Require().NoError(err)

	result, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(models.StatusRevoked, result.Status)
}

func (s *ServiceSuite) TestVerifyLandsLazyExpiry() {
	consent := s.createStoredConsent("user-1", models.StatusGranted, time.Now().Add(-time.Minute))

	result, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(models.StatusExpired, result.Status)

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusExpired, stored.Status)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.AuditActionVerificationAttempt, events[0].Action)
	s.Equal(models.AuditActionExpired, events[1].Action)
	s.Equal(models.ActorSystem, events[1].Actor)
}

func (s *ServiceSuite) TestVerifyExpiryPersistedOnce() {
	consent := s.createStoredConsent("user-1", models.StatusGranted, time.Now().Add(-time.Minute))

	_, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	_, err = s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	expired := 0
	for _, event := range events {
		if event.Action == models.AuditActionExpired {
			expired++
		}
	}
	s.Equal(1, expired)
}

func (s *ServiceSuite) TestVerifyRevokedTakesPrecedenceOverExpiry() {
	consent := s.createStoredConsent("user-1", models.StatusRevoked, time.Now().Add(-time.Minute))

	result, err := s.service.Verify(s.ctx, consent.ID, "acme-analytics", models.PurposeAnalytics)
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(models.StatusRevoked, result.Status)

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, stored.Status)
}

func (s *ServiceSuite) TestVerifyUnknownConsent() {
	result, err := s.service.Verify(s.ctx, "b6f4f5c2-0000-4000-8000-000000000000", "acme", models.PurposeAnalytics)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyValidatesInput() {
	result, err := s.service.Verify(s.ctx, "", "acme", models.PurposeAnalytics)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	result, err = s.service.Verify(s.ctx, "some-id", "", models.PurposeAnalytics)
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	result, err = s.service.Verify(s.ctx, "some-id", "acme", models.Purpose("RESALE"))
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
