package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/domain"
	"github.com/go-menu-auth/internal/pkg/validate"
)

const errCodeNotRegistered = "not_registered"

// writeServiceError maps a service error onto an HTTP status. Errors that
// wrap no domain sentinel are storage failures and are not echoed back.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, MessageEnvelope{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, auth.ErrNotRegistered):
		writeJSON(w, http.StatusNotFound, MessageEnvelope{Error: err.Error(), ErrorCode: errCodeNotRegistered})
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
