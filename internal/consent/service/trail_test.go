package service_test

import (
	"covenant/internal/consent/models"
	dErrors "covenant/pkg/domain-errors"
)

func (s *ServiceSuite) TestGetTrailReturnsBothLedgers() {
	consent := s.grant("user-1")
	_, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "changed mind")
	s.Require().NoError(err)

	trail, err := s.service.GetTrail(s.ctx, consent.ID, "user-1")
	s.Require().NoError(err)
	s.Equal(consent.ID, trail.ConsentID)

	// Local list is newest first and does not include the access that
	// produced it.
	s.Require().Len(trail.LocalEvents, 2)
	s.Equal(models.AuditActionRevoked, trail.LocalEvents[0].Action)
	s.Equal(models.AuditActionCreated, trail.LocalEvents[1].Action)

	// Ledger list carries its own transaction identity.
	s.Require().Len(trail.LedgerEvents, 2)
	for _, event := range trail.LedgerEvents {
		s.NotEmpty(event.TxID)
	}
}

func (s *ServiceSuite) TestGetTrailAppendsAccessEvent() {
	consent := s.grant("user-1")

	_, err := s.service.GetTrail(s.ctx, consent.ID, "user-1")
	s.Require().NoError(err)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.AuditActionAuditAccess, events[0].Action)
	s.Equal("user-1", events[0].Actor)

	// A second read sees the first access in its history.
	trail, err := s.service.GetTrail(s.ctx, consent.ID, "user-1")
	s.Require().NoError(err)
	s.Require().Len(trail.LocalEvents, 2)
	s.Equal(models.AuditActionAuditAccess, trail.LocalEvents[0].Action)
}

func (s *ServiceSuite) TestGetTrailDegradesOnLedgerOutage() {
	consent := s.grant("user-1")
	s.ledger.SetUnavailable(true)

	trail, err := s.service.GetTrail(s.ctx, consent.ID, "user-1")
	s.Require().NoError(err)
	s.Require().Len(trail.LocalEvents, 1)
	s.Empty(trail.LedgerEvents)
}

func (s *ServiceSuite) TestGetTrailScopedToOwner() {
	consent := s.grant("user-1")

	trail, err := s.service.GetTrail(s.ctx, consent.ID, "user-2")
	s.Nil(trail)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// The denied read leaves no access event behind.
	events, listErr := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(listErr)
	s.Require().Len(events, 1)
	s.Equal(models.AuditActionCreated, events[0].Action)
}

func (s *ServiceSuite) TestGetTrailUnknownConsent() {
	trail, err := s.service.GetTrail(s.ctx, "b6f4f5c2-0000-4000-8000-000000000000", "user-1")
	s.Nil(trail)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
