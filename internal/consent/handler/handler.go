package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"covenant/internal/consent/models"
	"covenant/internal/platform/middleware"
	respond "covenant/internal/transport/http/json"
	"covenant/internal/transport/http/shared"
	dErrors "covenant/pkg/domain-errors"
	"covenant/pkg/validation"
)

// Service defines the interface for consent lifecycle operations.
type Service interface {
	Grant(ctx context.Context, userID, dataRecipient string, category models.Category, purpose models.Purpose, expiryDate time.Time) (*models.Consent, error)
	Revoke(ctx context.Context, consentID, userID, reason string) (*models.Consent, error)
	List(ctx context.Context, userID string) ([]*models.ConsentWithStatus, error)
	Get(ctx context.Context, consentID, userID string) (*models.ConsentWithStatus, error)
	Verify(ctx context.Context, consentID, dataRecipient string, purpose models.Purpose) (*models.VerificationResult, error)
	GetTrail(ctx context.Context, consentID, userID string) (*models.AuditTrail, error)
}

// Handler handles consent-related endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

// New creates a new consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register registers the consent routes with the chi router. Owner routes
// require the caller identity header; verification and the catalogs do not,
// since recipients and anonymous integrators use them.
func (h *Handler) Register(r chi.Router) {
	r.Route("/consents", func(r chi.Router) {
		r.Get("/categories", h.handleListCategories)
		r.Get("/purposes", h.handleListPurposes)
		r.Post("/{consentID}/verify", h.handleVerifyConsent)

		r.Group(func(r chi.Router) {
			r.Use(middleware.UserContext)
			r.Post("/", h.handleGrantConsent)
			r.Get("/", h.handleListConsents)
			r.Get("/{consentID}", h.handleGetConsent)
			r.Post("/{consentID}/revoke", h.handleRevokeConsent)
			r.Get("/{consentID}/audit-trail", h.handleGetAuditTrail)
		})
	})
}

func (h *Handler) handleGrantConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var grantReq models.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&grantReq); err != nil {
		h.logger.WarnContext(ctx, "failed to decode grant consent request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if err := validation.Validate(&grantReq); err != nil {
		shared.WriteError(w, err)
		return
	}

	consent, err := h.consent.Grant(ctx, userID, grantReq.DataRecipient,
		models.Category(grantReq.DataCategory), models.Purpose(grantReq.Purpose), grantReq.ExpiryDate)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to grant consent",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, formatConsent(consent, consent.Status))
}

func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	records, err := h.consent.List(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consents",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, ListResponse{Consents: formatConsents(records)})
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	consentID := chi.URLParam(r, "consentID")

	record, err := h.consent.Get(ctx, consentID, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatConsent(record.Consent, record.Status))
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	consentID := chi.URLParam(r, "consentID")

	// The body is optional; a bare revoke carries no reason.
	var revokeReq models.RevokeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&revokeReq); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
			return
		}
		if err := validation.Validate(&revokeReq); err != nil {
			shared.WriteError(w, err)
			return
		}
	}

	consent, err := h.consent.Revoke(ctx, consentID, userID, revokeReq.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to revoke consent",
			"request_id", middleware.GetRequestID(ctx),
			"consent_id", consentID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatConsent(consent, consent.Status))
}

func (h *Handler) handleVerifyConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consentID := chi.URLParam(r, "consentID")

	var verifyReq models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&verifyReq); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if err := validation.Validate(&verifyReq); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.consent.Verify(ctx, consentID, verifyReq.DataRecipient, models.Purpose(verifyReq.Purpose))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to verify consent",
			"request_id", middleware.GetRequestID(ctx),
			"consent_id", consentID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, VerifyResponse{
		ConsentID:  result.ConsentID,
		IsValid:    result.IsValid,
		Status:     string(result.Status),
		ExpiryDate: result.ExpiryDate,
		VerifiedAt: result.VerifiedAt,
	})
}

func (h *Handler) handleGetAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	consentID := chi.URLParam(r, "consentID")

	trail, err := h.consent.GetTrail(ctx, consentID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read audit trail",
			"request_id", middleware.GetRequestID(ctx),
			"consent_id", consentID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, formatTrail(trail))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, CatalogResponse{Entries: models.CategoryCatalog})
}

func (h *Handler) handleListPurposes(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, CatalogResponse{Entries: models.PurposeCatalog})
}
