package store

import (
	"context"
	"sort"
	"sync"

	"covenant/internal/consent/models"
)

// InMemoryStore keeps consents and audit events in process memory. It backs
// tests and local development; the mutex makes it the same serialization
// point the Postgres row locks provide in production.
type InMemoryStore struct {
	mu       sync.RWMutex
	consents map[string]*models.Consent
	events   map[string][]*models.AuditEvent
}

// NewInMemory constructs an empty in-memory consent store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		consents: make(map[string]*models.Consent),
		events:   make(map[string][]*models.AuditEvent),
	}
}

func (s *InMemoryStore) CreateConsent(_ context.Context, consent *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[consent.ID]; ok {
		return ErrConflict
	}
	copyRecord := *consent
	s.consents[consent.ID] = &copyRecord
	return nil
}

func (s *InMemoryStore) GetConsentByID(_ context.Context, consentID string) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.consents[consentID]
	if !ok {
		return nil, ErrNotFound
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) GetConsentForUser(_ context.Context, consentID, userID string) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.consents[consentID]
	if !ok || record.UserID != userID {
		return nil, ErrNotFound
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*models.Consent
	for _, record := range s.consents {
		if record.UserID != userID {
			continue
		}
		copyRecord := *record
		records = append(records, &copyRecord)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// UpdateConsentStatus applies the transition only when the current status
// matches expected. The check and the write happen under one lock, which is
// what makes a revoke and a lazy expiry mutually exclusive.
func (s *InMemoryStore) UpdateConsentStatus(_ context.Context, consentID string, expected models.Status, update models.StatusUpdate) (*models.Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.consents[consentID]
	if !ok {
		return nil, ErrNotFound
	}
	if record.Status != expected {
		return nil, ErrStatusConflict
	}
	record.Status = update.Status
	if update.RevocationReason != nil {
		record.RevocationReason = update.RevocationReason
	}
	record.UpdatedAt = update.UpdatedAt
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) SetLedgerRef(_ context.Context, consentID, ledgerRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.consents[consentID]
	if !ok {
		return ErrNotFound
	}
	ref := ledgerRef
	record.LedgerRef = &ref
	return nil
}

func (s *InMemoryStore) AppendAuditEvent(_ context.Context, event *models.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyEvent := *event
	s.events[event.ConsentID] = append(s.events[event.ConsentID], &copyEvent)
	return nil
}

func (s *InMemoryStore) ListAuditEvents(_ context.Context, consentID string) ([]*models.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.events[consentID]
	events := make([]*models.AuditEvent, 0, len(stored))
	for _, event := range stored {
		copyEvent := *event
		events = append(events, &copyEvent)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}

// Clear drops all state. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents = make(map[string]*models.Consent)
	s.events = make(map[string][]*models.AuditEvent)
}
