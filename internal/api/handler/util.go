package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wibank/ledger-core/internal/api/middleware"
	"github.com/wibank/ledger-core/internal/api/problem"
	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/models"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

func requestActor(r *http.Request) (uuid.UUID, bool, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, false, errors.New("missing user in auth context")
	}

	actorID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false, errors.New("invalid user_id in auth context")
	}

	return actorID, middleware.UserRoleFromContext(r.Context()) == "admin", nil
}

// parseAmount converts a decimal amount string ("25.00") into micros.
func parseAmount(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, models.ErrInvalidAmount
	}
	micros, err := domain.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if micros <= 0 {
		return 0, models.ErrInvalidAmount
	}
	return micros, nil
}

// mapLedgerError maps business-rule failures to problem responses. Internal
// faults fall through for callers to log.
func mapLedgerError(err error) (status int, problemType, message string, ok bool) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound, "account/not-found", "account not found", true
	case errors.Is(err, models.ErrProfileNotFound):
		return http.StatusNotFound, "profile/not-found", "profile not found", true
	case errors.Is(err, models.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction/not-found", "transaction not found", true
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "transaction/insufficient-funds", "insufficient funds", true
	case errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest, "transaction/invalid-amount", "amount must be positive", true
	case errors.Is(err, models.ErrAccountNotActive):
		return http.StatusUnprocessableEntity, "account/not-active", "account is not active", true
	default:
		return 0, "", "", false
	}
}
