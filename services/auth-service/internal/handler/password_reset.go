package handler

import (
	"net/http"
	"strings"

	"github.com/citadell/task-manager-api/services/auth-service/internal/payload"
)

func (h *authHTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authUsecase.ForgotPassword(r.Context(), strings.ToLower(req.Email)); err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, payload.MessageResponse{
		Message: "Password reset email sent. Please check your inbox",
	})
}

func (h *authHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authUsecase.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, payload.MessageResponse{Message: "Password reset successfully"})
}
