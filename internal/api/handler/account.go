package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/service"
)

type AccountHandler struct {
	accounts     *service.AccountService
	transactions *service.TransactionService
	historyLimit int
}

func NewAccountHandler(accounts *service.AccountService, transactions *service.TransactionService, historyLimit int) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		transactions: transactions,
		historyLimit: historyLimit,
	}
}

type openAccountRequest struct {
	Kind         string           `json:"kind"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	DateOfBirth  string           `json:"date_of_birth"`
	GovernmentID string           `json:"government_id"`
	Address      models.Address   `json:"address"`
	Documents    models.Documents `json:"documents"`
}

type openAccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountID     string `json:"account_id"`
	Status        string `json:"status"`
}

// OpenAccount creates a profile and account for the authenticated user.
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), service.OpenAccountRequest{
		ProfileID:    actorID,
		Kind:         req.Kind,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		GovernmentID: req.GovernmentID,
		Address:      req.Address,
		Documents:    req.Documents,
	})
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("open account failed", zap.Error(err), zap.String("profile_id", actorID.String()))
		RespondError(w, r, http.StatusBadRequest, "account/open-failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, openAccountResponse{
		AccountNumber: account.AccountNumber,
		AccountID:     account.ID.String(),
		Status:        account.Status,
	})
}

// GetAccount resolves an account by its external number. Owner or admin only.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	accountNumber := chi.URLParam(r, "accountNumber")
	account, err := h.accounts.GetAccount(r.Context(), accountNumber)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("get account failed", zap.Error(err), zap.String("account_number", accountNumber))
		RespondError(w, r, http.StatusInternalServerError, "account/read-failed", "Failed to get account")
		return
	}
	if !isAdmin && account.ProfileID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	RespondJSON(w, http.StatusOK, account)
}

// ListAccounts returns the caller's accounts.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	RespondJSON(w, http.StatusOK, h.accounts.GetAccountsForUser(r.Context(), actorID))
}

// GetHistory returns the account's transactions, most-recent-first.
func (h *AccountHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := authorizeAccount(w, r, h.accounts)
	if !ok {
		return
	}

	limit := h.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history, err := h.transactions.History(r.Context(), account.ID, limit)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("get history failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/history-read-failed", "Failed to get transaction history")
		return
	}

	RespondJSON(w, http.StatusOK, history)
}

// authorizeAccount parses the {id} URL parameter and verifies the caller owns
// the account (or is admin).
func authorizeAccount(w http.ResponseWriter, r *http.Request, accounts *service.AccountService) (*models.Account, bool) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return nil, false
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid account ID")
		return nil, false
	}

	account, err := accounts.GetAccountByID(r.Context(), accountID)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return nil, false
		}
		zap.L().Error("account authorization lookup failed", zap.Error(err), zap.String("account_id", accountID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/authorization-failed", "Failed to authorize account access")
		return nil, false
	}
	if !isAdmin && account.ProfileID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return nil, false
	}
	return account, true
}
