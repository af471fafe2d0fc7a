package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/roombook/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context, principal application.Principal) (application.User, error)
	UpdateProfile(ctx context.Context, params application.UpdateProfileParams) (application.User, error)
	ChangePassword(ctx context.Context, params application.ChangePasswordParams) error
}

// ProfileHandler serves the authenticated user's own account.
type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID)

	user, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// Update handles PATCH /profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode profile update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID)

	user, err := h.service.UpdateProfile(r.Context(), application.UpdateProfileParams{
		Principal: principal,
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// ChangePassword handles PUT /profile/password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ChangePassword", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode password change", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ChangePassword", "principal_id", principal.UserID)

	err := h.service.ChangePassword(r.Context(), application.ChangePasswordParams{
		Principal:       principal,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "password change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password changed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
