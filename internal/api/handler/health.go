package handler

import (
	"net/http"

	"github.com/wibank/ledger-core/internal/ledger"
)

// HealthHandler exposes Kubernetes-style liveness and readiness endpoints.
type HealthHandler struct {
	store *ledger.Store
}

func NewHealthHandler(store *ledger.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Live always reports OK while the process is up.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports whether the ledger store is initialized. The store lives
// in-process, so readiness follows liveness closely.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		RespondError(w, r, http.StatusServiceUnavailable, "health/store-unavailable", "ledger store unavailable")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
