package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/troindx/oxidize/internal/middleware"
	"github.com/troindx/oxidize/internal/usecase"
)

// VerificationHTTPHandler serves the email verification endpoints. Both
// routes sit behind the session guard, so a Session is always present in
// the request context.
type VerificationHTTPHandler struct {
	verificationUsecase usecase.VerificationUsecase
	logger              *zerolog.Logger
}

// NewVerificationHTTPHandler creates a new VerificationHTTPHandler instance.
func NewVerificationHTTPHandler(
	verificationUsecase usecase.VerificationUsecase,
	logger *zerolog.Logger,
) *VerificationHTTPHandler {
	return &VerificationHTTPHandler{
		verificationUsecase: verificationUsecase,
		logger:              logger,
	}
}

// Start handles GET /mail/verifications/start-verification. It creates or
// resets the caller's verification record and responds with a bare `true`.
func (h *VerificationHTTPHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if _, err := h.verificationUsecase.StartVerification(r.Context(), session.User); err != nil {
		if errors.Is(err, usecase.ErrVerificationConflict) {
			respondError(w, http.StatusConflict, "conflicting verification request")
			return
		}
		h.logger.Error().Err(err).Msg("failed to start email verification")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, true)
}

// Finish handles GET /mail/verifications/{id}/verify/{secret}.
func (h *VerificationHTTPHandler) Finish(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id := chi.URLParam(r, "id")
	secret := chi.URLParam(r, "secret")

	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid verification id")
		return
	}

	record, err := h.verificationUsecase.FinishVerification(r.Context(), session.User.ID.Hex(), id, secret)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrVerificationNotFound):
			respondError(w, http.StatusNotFound, "email verification not found")
		case errors.Is(err, usecase.ErrVerificationOwnership):
			respondError(w, http.StatusUnauthorized, "email verification belongs to another user")
		case errors.Is(err, usecase.ErrSecretMismatch):
			respondError(w, http.StatusConflict, "verification secret does not match")
		default:
			h.logger.Error().Err(err).Msg("failed to finish email verification")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondJSON(w, http.StatusOK, record)
}
