package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"covenant/internal/consent/models"
)

// PostgresStore persists consent records and audit events in PostgreSQL.
// Row-level locking plus the status predicate on updates provide the
// compare-and-set discipline concurrent writers rely on.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const consentColumns = `id, user_id, data_recipient, data_category, purpose, status,
	expiry_date, revocation_reason, ledger_ref, created_at, updated_at`

func (s *PostgresStore) CreateConsent(ctx context.Context, consent *models.Consent) error {
	if consent == nil {
		return fmt.Errorf("consent record is required")
	}
	query := `
		INSERT INTO consents (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		consent.ID,
		consent.UserID,
		consent.DataRecipient,
		string(consent.DataCategory),
		string(consent.Purpose),
		string(consent.Status),
		consent.ExpiryDate,
		consent.RevocationReason,
		consent.LedgerRef,
		consent.CreatedAt,
		consent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create consent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create consent rows: %w", err)
	}
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) GetConsentByID(ctx context.Context, consentID string) (*models.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE id = $1`
	record, err := scanConsent(s.db.QueryRowContext(ctx, query, consentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consent: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) GetConsentForUser(ctx context.Context, consentID, userID string) (*models.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE id = $1 AND user_id = $2`
	record, err := scanConsent(s.db.QueryRowContext(ctx, query, consentID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get consent for user: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*models.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var records []*models.Consent
	for rows.Next() {
		record, err := scanConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return records, nil
}

// UpdateConsentStatus performs the compare-and-set transition server-side:
// the status predicate in the UPDATE distinguishes "gone" from "changed under
// us" so a revoke can never silently overwrite a concurrent expiry.
func (s *PostgresStore) UpdateConsentStatus(ctx context.Context, consentID string, expected models.Status, update models.StatusUpdate) (*models.Consent, error) {
	query := `
		UPDATE consents
		SET status = $3,
		    revocation_reason = COALESCE($4, revocation_reason),
		    updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING ` + consentColumns
	record, err := scanConsent(s.db.QueryRowContext(ctx, query,
		consentID,
		string(expected),
		string(update.Status),
		update.RevocationReason,
		update.UpdatedAt,
	))
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update consent status: %w", err)
	}

	// No row matched: either the consent is gone or its status moved.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM consents WHERE id = $1)`, consentID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check consent existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrStatusConflict
}

func (s *PostgresStore) SetLedgerRef(ctx context.Context, consentID, ledgerRef string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE consents SET ledger_ref = $2 WHERE id = $1`,
		consentID, ledgerRef,
	)
	if err != nil {
		return fmt.Errorf("set ledger ref: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set ledger ref rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendAuditEvent(ctx context.Context, event *models.AuditEvent) error {
	if event == nil {
		return fmt.Errorf("audit event is required")
	}
	query := `
		INSERT INTO consent_audit_events (id, consent_id, action, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.ConsentID,
		string(event.Action),
		event.Actor,
		event.Details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAuditEvents(ctx context.Context, consentID string) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, consent_id, action, actor, details, created_at
		FROM consent_audit_events
		WHERE consent_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, consentID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var event models.AuditEvent
		var action string
		if err := rows.Scan(&event.ID, &event.ConsentID, &action, &event.Actor, &event.Details, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = models.AuditAction(action)
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

type consentRow interface {
	Scan(dest ...any) error
}

func scanConsent(row consentRow) (*models.Consent, error) {
	var record models.Consent
	var category, purpose, status string
	var reason, ledgerRef sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.DataRecipient,
		&category,
		&purpose,
		&status,
		&record.ExpiryDate,
		&reason,
		&ledgerRef,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.DataCategory = models.Category(category)
	record.Purpose = models.Purpose(purpose)
	record.Status = models.Status(status)
	if reason.Valid {
		record.RevocationReason = &reason.String
	}
	if ledgerRef.Valid {
		record.LedgerRef = &ledgerRef.String
	}
	return &record, nil
}
