package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/domain"
	"github.com/go-menu-auth/internal/pkg/validate"
	"github.com/go-menu-auth/internal/transport/http/middleware"
)

const codeSentMessage = "Verification code sent to your email"

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// AuthHandler exposes the passwordless login flow.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Success: true, Message: codeSentMessage})
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.SendVerificationCode(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: codeSentMessage})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.VerifyAndLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Success:   true,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

// Logout ends the session named in the body, or the caller's own session
// when the body carries no token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tok := strings.TrimSpace(req.Token)
	if tok == "" {
		tok = middleware.TokenFromRequest(r)
	}
	if err := h.svc.Logout(r.Context(), tok); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Me(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MeEnvelope{User: p})
}
