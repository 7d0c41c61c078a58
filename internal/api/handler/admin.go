package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/service"
)

// AdminHandler exposes administrative reporting and account controls.
type AdminHandler struct {
	analytics *service.AnalyticsService
	accounts  *service.AccountService
}

func NewAdminHandler(analytics *service.AnalyticsService, accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{analytics: analytics, accounts: accounts}
}

// GetAnalytics returns the administrative reporting summary.
func (h *AdminHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.analytics.Summary(r.Context()))
}

// ListAccounts returns a snapshot of every account.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.analytics.ListAccounts(r.Context()))
}

// ListProfiles returns a snapshot of every customer profile.
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.analytics.ListProfiles(r.Context()))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateAccountStatus applies an administrative status change.
func (h *AdminHandler) UpdateAccountStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid account ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	account, err := h.accounts.UpdateStatus(r.Context(), accountID, req.Status)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("update account status failed", zap.Error(err), zap.String("account_id", accountID.String()))
		RespondError(w, r, http.StatusBadRequest, "account/status-update-failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, account)
}
