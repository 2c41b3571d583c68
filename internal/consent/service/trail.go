package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"covenant/internal/audit"
	"covenant/internal/consent/models"
	"covenant/internal/consent/tracer"
	"covenant/internal/ledger"
	dErrors "covenant/pkg/domain-errors"
)

// GetTrail returns the audit trail for a consent the caller owns. The local
// and ledger record sets are fetched concurrently and returned side by side:
// the local list is authoritative, the ledger list corroborating, and no
// merge is attempted because the two stores share no event identity.
// A ledger outage leaves the ledger list empty and the call succeeds.
func (s *Service) GetTrail(ctx context.Context, consentID, userID string) (*models.AuditTrail, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTrail,
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

	if _, err := s.store.GetConsentForUser(ctx, consentID, userID); err != nil {
		opErr = mapLookupError(err, "failed to read consent")
		return nil, opErr
	}

	var localEvents []*models.AuditEvent
	var ledgerEvents []ledger.Event

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.store.ListAuditEvents(gctx, consentID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodePersistence, "failed to list audit events")
		}
		localEvents = events
		return nil
	})
	g.Go(func() error {
		ledgerCtx, cancel := context.WithTimeout(gctx, s.ledgerTimeout)
		defer cancel()
		events, err := s.ledger.GetAuditTrail(ledgerCtx, consentID)
		if err != nil {
			// Supplementary source: degrade to local-only results.
			s.logger.WarnContext(ctx, "ledger trail unavailable, returning local events only",
				"consent_id", consentID,
				"error", err,
			)
			return nil
		}
		ledgerEvents = events
		return nil
	})
	if err := g.Wait(); err != nil {
		opErr = err
		return nil, err
	}

	// Appended after the read so the returned trail reflects the history up
	// to, but not including, this access.
	if err := s.appendAuditEvent(ctx, consentID, models.AuditActionAuditAccess, userID, "Audit trail accessed by owner"); err != nil {
		opErr = err
		return nil, err
	}

	s.emitCompliance(ctx, audit.Event{
		ConsentID: consentID,
		UserID:    userID,
		Action:    string(models.AuditActionAuditAccess),
		Actor:     userID,
	})
	if s.metrics != nil {
		s.metrics.IncrementTrailReads()
	}

	trail := &models.AuditTrail{
		ConsentID:    consentID,
		LocalEvents:  localEvents,
		LedgerEvents: make([]models.LedgerEvent, 0, len(ledgerEvents)),
	}
	for _, event := range ledgerEvents {
		trail.LedgerEvents = append(trail.LedgerEvents, models.LedgerEvent{
			TxID:      event.TxID,
			Action:    event.Action,
			Actor:     event.Actor,
			Details:   event.Details,
			Timestamp: event.Timestamp,
		})
	}
	return trail, nil
}
