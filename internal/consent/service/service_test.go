package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"covenant/internal/audit"
	"covenant/internal/consent/models"
	"covenant/internal/consent/service"
	"covenant/internal/consent/service/mocks"
	"covenant/internal/consent/store"
	"covenant/internal/ledger"
	dErrors "covenant/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	ledger  *ledger.InMemoryLedger
	sink    *audit.MemorySink
	service *service.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.ledger = ledger.NewInMemory()
	s.sink = audit.NewMemorySink()
	s.service = service.NewService(s.store, s.ledger, testLogger(),
		service.WithCompliancePublisher(audit.NewPublisher(s.sink)),
		service.WithLedgerTimeout(time.Second),
	)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ServiceSuite) grant(userID string) *models.Consent {
	consent, err := s.service.Grant(s.ctx, userID, "acme-analytics",
		models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(24*time.Hour))
	s.Require().NoError(err)
	return consent
}

func (s *ServiceSuite) TestGrantPersistsAndMirrors() {
	consent := s.grant("user-1")

	s.Equal(models.StatusGranted, consent.Status)
	s.Require().NotNil(consent.LedgerRef)
	s.NotEmpty(*consent.LedgerRef)

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusGranted, stored.Status)
	s.Require().NotNil(stored.LedgerRef)
	s.Equal(*consent.LedgerRef, *stored.LedgerRef)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.AuditActionCreated, events[0].Action)
	s.Equal("user-1", events[0].Actor)

	records, err := s.ledger.QueryConsentsByUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(consent.ID, records[0].ConsentID)
}

func (s *ServiceSuite) TestGrantRejectsInvalidInputBeforeAnyWrite() {
	cases := []struct {
		name      string
		userID    string
		recipient string
		category  models.Category
		purpose   models.Purpose
		expiry    time.Time
	}{
		{"missing user", "", "acme", models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(time.Hour)},
		{"missing recipient", "user-1", "", models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(time.Hour)},
		{"unknown category", "user-1", "acme", models.Category("MEDICAL"), models.PurposeAnalytics, time.Now().Add(time.Hour)},
		{"unknown purpose", "user-1", "acme", models.CategoryFinancial, models.Purpose("RESALE"), time.Now().Add(time.Hour)},
		{"expiry in the past", "user-1", "acme", models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(-time.Hour)},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			consent, err := s.service.Grant(s.ctx, tc.userID, tc.recipient, tc.category, tc.purpose, tc.expiry)
			s.Nil(consent)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))

			records, listErr := s.store.ListByUser(s.ctx, "user-1")
			s.Require().NoError(listErr)
			s.Empty(records)
		})
	}
}

func (s *ServiceSuite) TestGrantSurvivesLedgerOutage() {
	s.ledger.SetUnavailable(true)

	consent := s.grant("user-1")

	s.Equal(models.StatusGranted, consent.Status)
	s.Nil(consent.LedgerRef)

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Nil(stored.LedgerRef)

	// The authoritative audit record is unaffected by the mirror failing.
	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(models.AuditActionCreated, events[0].Action)
}

func (s *ServiceSuite) TestRevokeTransitionsAndRecordsReason() {
	consent := s.grant("user-1")

	updated, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "changed mind")
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, updated.Status)
	s.Require().NotNil(updated.RevocationReason)
	s.Equal("changed mind", *updated.RevocationReason)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.AuditActionRevoked, events[0].Action)
	s.Equal("Consent revoked. Reason: changed mind", events[0].Details)
	s.Equal(models.AuditActionCreated, events[1].Action)
}

func (s *ServiceSuite) TestRevokeWithoutReasonStoresDefault() {
	consent := s.grant("user-1")

	updated, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "")
	s.Require().NoError(err)
	s.Require().NotNil(updated.RevocationReason)
	s.Equal("User initiated revocation", *updated.RevocationReason)

	events, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal("Consent revoked. Reason: Not provided", events[0].Details)
}

func (s *ServiceSuite) TestRevokeRejectsTerminalStates() {
	consent := s.grant("user-1")
	_, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "first")
	s.Require().NoError(err)

	before, err := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(err)

	updated, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "again")
	s.Nil(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	// The rejected attempt leaves no trace in the audit trail.
	after, listErr := s.store.ListAuditEvents(s.ctx, consent.ID)
	s.Require().NoError(listErr)
	s.Len(after, len(before))

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.RevocationReason)
	s.Equal("first", *stored.RevocationReason)
}

func (s *ServiceSuite) TestRevokeUnknownConsent() {
	updated, err := s.service.Revoke(s.ctx, "b6f4f5c2-0000-4000-8000-000000000000", "user-1", "")
	s.Nil(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRevokeScopedToOwner() {
	consent := s.grant("user-1")

	updated, err := s.service.Revoke(s.ctx, consent.ID, "user-2", "")
	s.Nil(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	stored, err := s.store.GetConsentByID(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusGranted, stored.Status)
}

func (s *ServiceSuite) TestRevokeSurvivesLedgerOutage() {
	consent := s.grant("user-1")
	s.ledger.SetUnavailable(true)

	updated, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "outage test")
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, updated.Status)
}

func (s *ServiceSuite) TestListComputesEffectiveStatus() {
	active := s.grant("user-1")

	// Stored as GRANTED but already past expiry, awaiting a lazy transition.
	expired := &models.Consent{
		ID:            "24b7f0ce-56cd-4e59-94f8-2e9f80a1f35a",
		UserID:        "user-1",
		DataRecipient: "acme-analytics",
		DataCategory:  models.CategoryPersonal,
		Purpose:       models.PurposeMarketing,
		Status:        models.StatusGranted,
		ExpiryDate:    time.Now().Add(-time.Hour),
		CreatedAt:     time.Now().Add(-48 * time.Hour),
		UpdatedAt:     time.Now().Add(-48 * time.Hour),
	}
	s.Require().NoError(s.store.CreateConsent(s.ctx, expired))

	result, err := s.service.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(result, 2)

	byID := map[string]models.Status{}
	for _, record := range result {
		byID[record.Consent.ID] = record.Status
	}
	s.Equal(models.StatusGranted, byID[active.ID])
	s.Equal(models.StatusExpired, byID[expired.ID])

	// The effective status is a read-time view; the row is untouched.
	stored, err := s.store.GetConsentByID(s.ctx, expired.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusGranted, stored.Status)
}

func (s *ServiceSuite) TestGetScopedToOwner() {
	consent := s.grant("user-1")

	record, err := s.service.Get(s.ctx, consent.ID, "user-1")
	s.Require().NoError(err)
	s.Equal(consent.ID, record.Consent.ID)
	s.Equal(models.StatusGranted, record.Status)

	record, err = s.service.Get(s.ctx, consent.ID, "user-2")
	s.Nil(record)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestLifecycleEmitsComplianceEvents() {
	consent := s.grant("user-1")
	_, err := s.service.Revoke(s.ctx, consent.ID, "user-1", "done with the service")
	s.Require().NoError(err)

	events := s.sink.Events()
	s.Require().Len(events, 2)
	s.Equal(string(models.AuditActionCreated), events[0].Action)
	s.Equal(string(models.AuditActionRevoked), events[1].Action)
	s.Equal(consent.ID, events[1].ConsentID)
}

func TestGrantStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().
		CreateConsent(gomock.Any(), gomock.Any()).
		Return(errors.New("connection reset"))

	svc := service.NewService(mockStore, ledger.NewInMemory(), testLogger())

	consent, err := svc.Grant(context.Background(), "user-1", "acme",
		models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(time.Hour))
	if consent != nil {
		t.Fatalf("expected no consent, got %+v", consent)
	}
	if !dErrors.HasCode(err, dErrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestGrantAuditAppendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().CreateConsent(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().SetLedgerRef(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().
		AppendAuditEvent(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	svc := service.NewService(mockStore, ledger.NewInMemory(), testLogger())

	_, err := svc.Grant(context.Background(), "user-1", "acme",
		models.CategoryFinancial, models.PurposeAnalytics, time.Now().Add(time.Hour))
	if !dErrors.HasCode(err, dErrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestRevokeConcurrentTransitionConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	granted := &models.Consent{
		ID:            "d1a9f9a3-8e4e-4f2a-9f6c-0a1b2c3d4e5f",
		UserID:        "user-1",
		DataRecipient: "acme",
		DataCategory:  models.CategoryFinancial,
		Purpose:       models.PurposeAnalytics,
		Status:        models.StatusGranted,
		ExpiryDate:    time.Now().Add(time.Hour),
	}
	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().
		GetConsentForUser(gomock.Any(), granted.ID, "user-1").
		Return(granted, nil)
	mockStore.EXPECT().
		UpdateConsentStatus(gomock.Any(), granted.ID, models.StatusGranted, gomock.Any()).
		Return(nil, store.ErrStatusConflict)

	svc := service.NewService(mockStore, ledger.NewInMemory(), testLogger())

	updated, err := svc.Revoke(context.Background(), granted.ID, "user-1", "")
	if updated != nil {
		t.Fatalf("expected no consent, got %+v", updated)
	}
	if !dErrors.HasCode(err, dErrors.CodeInvalidState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}
