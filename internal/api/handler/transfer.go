package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/service"
)

type TransferHandler struct {
	accounts  *service.AccountService
	transfers *service.TransferService
}

func NewTransferHandler(accounts *service.AccountService, transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{accounts: accounts, transfers: transfers}
}

type transferRequest struct {
	FromAccountID   string `json:"from_account_id"`
	ToAccountNumber string `json:"to_account_number"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
}

// MakeTransfer moves funds between two accounts.
func (h *TransferHandler) MakeTransfer(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid from_account_id")
		return
	}
	if req.ToAccountNumber == "" {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-number", "to_account_number is required")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transaction/invalid-amount", "amount must be a positive decimal string")
		return
	}

	// Only the owner of the source account (or an admin) may move its funds.
	source, err := h.accounts.GetAccountByID(r.Context(), fromID)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer source lookup failed", zap.Error(err), zap.String("account_id", fromID.String()))
		RespondError(w, r, http.StatusInternalServerError, "transfer/source-lookup-failed", "Failed to resolve source account")
		return
	}
	if !isAdmin && source.ProfileID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	result, err := h.transfers.Transfer(r.Context(), fromID, req.ToAccountNumber, amount, req.Description)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer failed", zap.Error(err), zap.String("from_account_id", fromID.String()))
		RespondError(w, r, http.StatusUnprocessableEntity, "transfer/failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}
