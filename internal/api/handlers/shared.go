package handlers

import (
	"errors"
	"net/http"

	"github.com/avandermeer/stock-ledger-backend/internal/apperrors"
	"github.com/avandermeer/stock-ledger-backend/internal/api/middleware"
	"github.com/avandermeer/stock-ledger-backend/internal/api/response"
	"github.com/avandermeer/stock-ledger-backend/internal/model"
)

// respondServiceError maps a service error kind onto an HTTP status.
// ErrConflict maps to 409 so clients know the operation is safe to retry.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrListNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, apperrors.ErrDuplicateName):
		response.RespondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperrors.ErrConflict):
		response.RespondError(w, http.StatusConflict, err.Error(), "retryable")
	case errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInsufficientData),
		errors.Is(err, apperrors.ErrLengthMismatch),
		errors.Is(err, apperrors.ErrZeroVariance):
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrInsufficientShares):
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, apperrors.ErrAccessDenied):
		response.RespondError(w, http.StatusForbidden, err.Error(), nil)
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// requireIdentity extracts the acting identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "missing identity", nil)
	}
	return id, ok
}
