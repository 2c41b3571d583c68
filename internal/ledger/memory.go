package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryLedger is a deterministic, process-local stand-in for the real
// ledger gateway. It honors the full Client contract, including idempotent
// consent IDs, and can be flipped into an unavailable state to exercise the
// callers' non-fatal failure policy.
type InMemoryLedger struct {
	mu          sync.Mutex
	records     map[string]ConsentRecord
	trails      map[string][]Event
	txCounter   int
	unavailable bool
}

var _ Client = (*InMemoryLedger)(nil)

// NewInMemory constructs an empty simulated ledger.
func NewInMemory() *InMemoryLedger {
	return &InMemoryLedger{
		records: make(map[string]ConsentRecord),
		trails:  make(map[string][]Event),
	}
}

// SetUnavailable makes every subsequent call fail with ErrUnavailable until
// flipped back. Test hook for outage scenarios.
func (l *InMemoryLedger) SetUnavailable(down bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unavailable = down
}

func (l *InMemoryLedger) nextTxID() string {
	l.txCounter++
	return fmt.Sprintf("tx_%06d", l.txCounter)
}

func (l *InMemoryLedger) RecordConsent(_ context.Context, record ConsentRecord) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unavailable {
		return nil, ErrUnavailable
	}
	// Consent IDs are idempotent: retrying a record returns the original receipt.
	if _, ok := l.records[record.ConsentID]; ok {
		first := l.trails[record.ConsentID][0]
		return &Receipt{TxID: first.TxID, Timestamp: first.Timestamp}, nil
	}
	txID := l.nextTxID()
	now := time.Now()
	l.records[record.ConsentID] = record
	l.trails[record.ConsentID] = append(l.trails[record.ConsentID], Event{
		TxID:      txID,
		Action:    "CREATED",
		Actor:     record.UserID,
		Details:   "Consent granted by user",
		Timestamp: now,
	})
	return &Receipt{TxID: txID, Timestamp: now}, nil
}

func (l *InMemoryLedger) RevokeConsent(_ context.Context, consentID, userID, reason string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unavailable {
		return nil, ErrUnavailable
	}
	record, ok := l.records[consentID]
	if !ok {
		return nil, ErrUnavailable
	}
	record.Status = "REVOKED"
	l.records[consentID] = record
	txID := l.nextTxID()
	now := time.Now()
	l.trails[consentID] = append(l.trails[consentID], Event{
		TxID:      txID,
		Action:    "REVOKED",
		Actor:     userID,
		Details:   fmt.Sprintf("Consent revoked. Reason: %s", reason),
		Timestamp: now,
	})
	return &Receipt{TxID: txID, Timestamp: now}, nil
}

func (l *InMemoryLedger) VerifyConsent(_ context.Context, consentID, _, _ string) (*Verification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unavailable {
		return nil, ErrUnavailable
	}
	record, ok := l.records[consentID]
	if !ok {
		return nil, ErrUnavailable
	}
	return &Verification{
		ConsentID:  consentID,
		Valid:      record.Status == "GRANTED",
		Status:     record.Status,
		VerifiedAt: time.Now(),
	}, nil
}

func (l *InMemoryLedger) GetAuditTrail(_ context.Context, consentID string) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unavailable {
		return nil, ErrUnavailable
	}
	return append([]Event{}, l.trails[consentID]...), nil
}

func (l *InMemoryLedger) QueryConsentsByUser(_ context.Context, userID string) ([]ConsentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unavailable {
		return nil, ErrUnavailable
	}
	var records []ConsentRecord
	for _, record := range l.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}
