package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"covenant/internal/audit"
	"covenant/internal/consent/metrics"
	"covenant/internal/consent/models"
	"covenant/internal/consent/store"
	"covenant/internal/consent/tracer"
	"covenant/internal/ledger"
	dErrors "covenant/pkg/domain-errors"
)

// Store defines the persistence interface for consents and audit events.
// Error Contract:
// - Lookups return store.ErrNotFound when no record exists
// - UpdateConsentStatus returns store.ErrStatusConflict when the
//   compare-and-set loses a race
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	CreateConsent(ctx context.Context, consent *models.Consent) error
	GetConsentByID(ctx context.Context, consentID string) (*models.Consent, error)
	GetConsentForUser(ctx context.Context, consentID, userID string) (*models.Consent, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Consent, error)
	UpdateConsentStatus(ctx context.Context, consentID string, expected models.Status, update models.StatusUpdate) (*models.Consent, error)
	SetLedgerRef(ctx context.Context, consentID, ledgerRef string) error
	AppendAuditEvent(ctx context.Context, event *models.AuditEvent) error
	ListAuditEvents(ctx context.Context, consentID string) ([]*models.AuditEvent, error)
}

const defaultLedgerTimeout = 3 * time.Second

// Service owns the consent lifecycle: it validates transitions, writes the
// authoritative store synchronously, and mirrors every change onto the
// ledger best-effort. A ledger outage degrades the mirror, never the
// operation; the local store alone decides what is true.
type Service struct {
	store         Store
	ledger        ledger.Client
	compliance    *audit.Publisher
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	logger        *slog.Logger
	ledgerTimeout time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used around lifecycle operations.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithCompliancePublisher mirrors audit events onto the compliance stream.
func WithCompliancePublisher(p *audit.Publisher) Option {
	return func(s *Service) {
		s.compliance = p
	}
}

// WithLedgerTimeout bounds every best-effort ledger call. Zero or negative
// keeps the default.
func WithLedgerTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.ledgerTimeout = timeout
		}
	}
}

// NewService wires the lifecycle engine over its store and ledger client.
func NewService(store Store, ledgerClient ledger.Client, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:         store,
		ledger:        ledgerClient,
		logger:        logger,
		tracer:        tracer.NewNoop(),
		ledgerTimeout: defaultLedgerTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Grant validates the request, persists a GRANTED consent, mirrors it onto
// the ledger best-effort, and appends the CREATED audit event. The store
// write must succeed; the ledger write may not, in which case the grant
// stands with no ledger reference.
func (s *Service) Grant(ctx context.Context, userID, dataRecipient string, category models.Category, purpose models.Purpose, expiryDate time.Time) (*models.Consent, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanGrant,
		tracer.String(tracer.AttrCategory, string(category)),
		tracer.String(tracer.AttrPurpose, string(purpose)),
	)
	var opErr error
	defer func() { span.End(opErr) }()

	consent, err := models.NewConsent(uuid.NewString(), userID, dataRecipient, category, purpose, expiryDate, time.Now())
	if err != nil {
		opErr = err
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrConsentID, consent.ID))

	if err := s.store.CreateConsent(ctx, consent); err != nil {
		opErr = dErrors.Wrap(err, dErrors.CodePersistence, "failed to persist consent")
		return nil, opErr
	}

	s.mirrorGrant(ctx, span, consent)

	if err := s.appendAuditEvent(ctx, consent.ID, models.AuditActionCreated, userID, "Consent granted by user"); err != nil {
		opErr = err
		return nil, err
	}

	s.emitCompliance(ctx, audit.Event{
		ConsentID: consent.ID,
		UserID:    userID,
		Action:    string(models.AuditActionCreated),
		Actor:     userID,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentsGranted(string(purpose))
		s.metrics.ObserveGrantLatency(time.Since(start).Seconds())
	}
	return consent, nil
}

// mirrorGrant attempts the best-effort ledger write for a fresh grant and,
// when it succeeds, records the returned transaction reference. Neither step
// can fail the grant.
func (s *Service) mirrorGrant(ctx context.Context, span tracer.Span, consent *models.Consent) {
	receipt, err := s.recordOnLedger(ctx, consent)
	if err != nil {
		span.AddEvent(tracer.EventLedgerWriteFailed)
		s.logLedgerFailure(ctx, "record_consent", consent.ID, err)
		return
	}
	span.SetAttributes(tracer.Bool(tracer.AttrLedgerMirrors, true))
	if err := s.store.SetLedgerRef(ctx, consent.ID, receipt.TxID); err != nil {
		// The mirror exists but the advisory back-reference does not;
		// reconciliation can restore it from the ledger later.
		s.logger.WarnContext(ctx, "failed to record ledger reference",
			"consent_id", consent.ID,
			"tx_id", receipt.TxID,
			"error", err,
		)
		return
	}
	txID := receipt.TxID
	consent.LedgerRef = &txID
}

func (s *Service) recordOnLedger(ctx context.Context, consent *models.Consent) (*ledger.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	return s.ledger.RecordConsent(ctx, ledger.ConsentRecord{
		ConsentID:     consent.ID,
		UserID:        consent.UserID,
		DataRecipient: consent.DataRecipient,
		DataCategory:  string(consent.DataCategory),
		Purpose:       string(consent.Purpose),
		Status:        string(consent.Status),
		ExpiryDate:    consent.ExpiryDate,
	})
}

// Revoke transitions a GRANTED consent to REVOKED. The transition is a
// compare-and-set keyed on the GRANTED status, so a revoke can never
// overwrite a concurrent lazy expiry.
func (s *Service) Revoke(ctx context.Context, consentID, userID, reason string) (*models.Consent, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrConsentID, consentID),
	)
	var opErr error
	defer func() { span.End(opErr) }()

	if consentID == "" {
		opErr = dErrors.New(dErrors.CodeValidation, "consent ID required")
		return nil, opErr
	}
	if userID == "" {
		opErr = dErrors.New(dErrors.CodeValidation, "user ID required")
		return nil, opErr
	}

	consent, err := s.store.GetConsentForUser(ctx, consentID, userID)
	if err != nil {
		opErr = mapLookupError(err, "failed to read consent")
		return nil, opErr
	}
	if !consent.CanRevoke() {
		opErr = dErrors.New(dErrors.CodeInvalidState, "only active consents can be revoked")
		return nil, opErr
	}

	now := time.Now()
	storedReason := reason
	if storedReason == "" {
		storedReason = "User initiated revocation"
	}
	updated, err := s.store.UpdateConsentStatus(ctx, consentID, models.StatusGranted, models.StatusUpdate{
		Status:           models.StatusRevoked,
		RevocationReason: &storedReason,
		UpdatedAt:        now,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrStatusConflict):
			// Lost the race against another terminal transition.
			opErr = dErrors.New(dErrors.CodeInvalidState, "only active consents can be revoked")
		case errors.Is(err, store.ErrNotFound):
			opErr = dErrors.New(dErrors.CodeNotFound, "consent not found")
		default:
			opErr = dErrors.Wrap(err, dErrors.CodePersistence, "failed to revoke consent")
		}
		return nil, opErr
	}

	s.mirrorRevoke(ctx, span, consentID, userID, reason)

	auditReason := reason
	if auditReason == "" {
		auditReason = "Not provided"
	}
	details := fmt.Sprintf("Consent revoked. Reason: %s", auditReason)
	if err := s.appendAuditEvent(ctx, consentID, models.AuditActionRevoked, userID, details); err != nil {
		opErr = err
		return nil, err
	}

	s.emitCompliance(ctx, audit.Event{
		ConsentID: consentID,
		UserID:    userID,
		Action:    string(models.AuditActionRevoked),
		Actor:     userID,
		Details:   details,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentsRevoked(string(updated.Purpose))
	}
	return updated, nil
}

func (s *Service) mirrorRevoke(ctx context.Context, span tracer.Span, consentID, userID, reason string) {
	ledgerCtx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	if _, err := s.ledger.RevokeConsent(ledgerCtx, consentID, userID, reason); err != nil {
		span.AddEvent(tracer.EventLedgerWriteFailed)
		s.logLedgerFailure(ctx, "revoke_consent", consentID, err)
	}
}

// List returns all consents owned by a user, newest first, each paired with
// its effective status at read time. The effective status is computed, not
// persisted: a GRANTED record past expiry reads as EXPIRED here while the
// stored row is untouched until a verification lands the lazy transition.
func (s *Service) List(ctx context.Context, userID string) ([]*models.ConsentWithStatus, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list consents")
	}

	now := time.Now()
	result := make([]*models.ConsentWithStatus, 0, len(records))
	for _, record := range records {
		result = append(result, &models.ConsentWithStatus{
			Consent: record,
			Status:  record.EffectiveStatus(now),
		})
	}
	return result, nil
}

// Get loads one consent scoped by its owner.
func (s *Service) Get(ctx context.Context, consentID, userID string) (*models.ConsentWithStatus, error) {
	if consentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "consent ID required")
	}
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user ID required")
	}
	record, err := s.store.GetConsentForUser(ctx, consentID, userID)
	if err != nil {
		return nil, mapLookupError(err, "failed to read consent")
	}
	return &models.ConsentWithStatus{
		Consent: record,
		Status:  record.EffectiveStatus(time.Now()),
	}, nil
}

func (s *Service) appendAuditEvent(ctx context.Context, consentID string, action models.AuditAction, actor, details string) error {
	event := &models.AuditEvent{
		ID:        uuid.NewString(),
		ConsentID: consentID,
		Action:    action,
		Actor:     actor,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := s.store.AppendAuditEvent(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "failed to append audit event")
	}
	return nil
}

func (s *Service) emitCompliance(ctx context.Context, event audit.Event) {
	if s.compliance == nil {
		return
	}
	_ = s.compliance.Emit(ctx, event)
}

func (s *Service) logLedgerFailure(ctx context.Context, operation, consentID string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementLedgerWriteFailures(operation)
	}
	s.logger.WarnContext(ctx, "ledger write failed, continuing with local record",
		"operation", operation,
		"consent_id", consentID,
		"error", err,
	)
}

func mapLookupError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "consent not found")
	}
	return dErrors.Wrap(err, dErrors.CodePersistence, msg)
}
