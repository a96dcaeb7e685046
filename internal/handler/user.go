package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/troindx/oxidize/internal/usecase"
)

// UserHTTPHandler serves the user account endpoints.
type UserHTTPHandler struct {
	userUsecase usecase.UserUsecase
	validate    *validator.Validate
	logger      *zerolog.Logger
}

// NewUserHTTPHandler creates a new UserHTTPHandler instance.
func NewUserHTTPHandler(userUsecase usecase.UserUsecase, logger *zerolog.Logger) *UserHTTPHandler {
	return &UserHTTPHandler{
		userUsecase: userUsecase,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Register handles POST /users. The response includes the one-time
// private key PEM.
func (h *UserHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, privateKey, err := h.userUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrUserAlreadyExists) {
			respondError(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error().Err(err).Msg("failed to register user")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	defer privateKey.Wipe()

	respondJSON(w, http.StatusCreated, RegisterUserResponse{
		User:       *user,
		PrivateKey: privateKey.Reveal(),
	})
}

// Get handles GET /users/{id} (session-guarded).
func (h *UserHTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userUsecase.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get user")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /users/{id} (ownership-guarded).
func (h *UserHTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Email == nil && req.Password == nil && req.Description == nil && req.PublicKey == nil {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	user, err := h.userUsecase.UpdateUser(r.Context(), id, usecase.UpdateUserParams{
		Email:       req.Email,
		Password:    req.Password,
		Description: req.Description,
		PublicKey:   req.PublicKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "email already in use")
		default:
			h.logger.Error().Err(err).Msg("failed to update user")
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id} (ownership-guarded).
func (h *UserHTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.userUsecase.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete user")
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
