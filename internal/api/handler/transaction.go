package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/service"
)

type TransactionHandler struct {
	accounts     *service.AccountService
	transactions *service.TransactionService
	deposits     *service.DepositService
}

func NewTransactionHandler(accounts *service.AccountService, transactions *service.TransactionService, deposits *service.DepositService) *TransactionHandler {
	return &TransactionHandler{
		accounts:     accounts,
		transactions: transactions,
		deposits:     deposits,
	}
}

type applyTransactionRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Apply posts a credit or debit against the account.
func (h *TransactionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	account, ok := authorizeAccount(w, r, h.accounts)
	if !ok {
		return
	}

	var req applyTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transaction/invalid-amount", "amount must be a positive decimal string")
		return
	}

	tx, err := h.transactions.Apply(r.Context(), account.ID, req.Kind, amount, req.Description, req.Category)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("apply transaction failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusBadRequest, "transaction/apply-failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, tx)
}

type depositCheckRequest struct {
	Amount     string `json:"amount"`
	FrontImage string `json:"front_image"`
	BackImage  string `json:"back_image"`
}

// DepositCheck posts a pending credit for a mobile check deposit.
func (h *TransactionHandler) DepositCheck(w http.ResponseWriter, r *http.Request) {
	account, ok := authorizeAccount(w, r, h.accounts)
	if !ok {
		return
	}

	var req depositCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transaction/invalid-amount", "amount must be a positive decimal string")
		return
	}

	tx, err := h.deposits.DepositCheck(r.Context(), account.ID, amount, req.FrontImage, req.BackImage)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("check deposit failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusBadRequest, "deposit/check-failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusAccepted, tx)
}

type payBillRequest struct {
	Payee  string `json:"payee"`
	Amount string `json:"amount"`
}

// PayBill debits the account for a bill payment.
func (h *TransactionHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	account, ok := authorizeAccount(w, r, h.accounts)
	if !ok {
		return
	}

	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "transaction/invalid-amount", "amount must be a positive decimal string")
		return
	}

	tx, err := h.deposits.PayBill(r.Context(), account.ID, req.Payee, amount)
	if err != nil {
		if status, pType, msg, ok := mapLedgerError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("bill payment failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusBadRequest, "bill/pay-failed", err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, tx)
}
