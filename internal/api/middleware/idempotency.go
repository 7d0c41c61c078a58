package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/api/problem"
	"github.com/wibank/ledger-core/internal/idempotency"
	"github.com/wibank/ledger-core/internal/observability"
)

// IdempotencyMiddleware enforces the Idempotency-Key contract for
// money-moving requests: the first request with a key is served and its
// response recorded; replays with the same key and body get the recorded
// response back without re-executing the operation.
func IdempotencyMiddleware(store *idempotency.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				observability.IncrementIdempotencyEvent("missing_key")
				problem.Write(w, r, http.StatusBadRequest, problem.Type("idempotency/missing-key"), http.StatusText(http.StatusBadRequest), "Idempotency-Key header is required")
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), http.StatusText(http.StatusBadRequest), "Failed to read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			reqHash := hashRequest(r.Method, r.URL.Path, bodyBytes)
			rec, err := store.Lookup(r.Context(), key, reqHash)
			if err == nil {
				observability.IncrementIdempotencyEvent("replay")
				respondFromRecord(w, rec)
				return
			}
			switch {
			case errors.Is(err, idempotency.ErrHashMismatch):
				observability.IncrementIdempotencyEvent("hash_mismatch")
				problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/key-conflict"), http.StatusText(http.StatusConflict), "conflicting idempotency key")
				return
			case errors.Is(err, idempotency.ErrInProgress):
				observability.IncrementIdempotencyEvent("in_progress")
				problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/in-progress"), http.StatusText(http.StatusConflict), "request with this idempotency key is still being processed")
				return
			}

			if err := store.Begin(r.Context(), key, reqHash); err != nil {
				observability.IncrementIdempotencyEvent("race_lost")
				problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/in-progress"), http.StatusText(http.StatusConflict), "request with this idempotency key is still being processed")
				return
			}

			rec2 := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec2, r)

			if rec2.status >= http.StatusInternalServerError {
				// Do not memoize server faults; let the client retry.
				store.Forget(r.Context(), key)
				observability.IncrementIdempotencyEvent("discarded")
				return
			}

			store.Complete(r.Context(), idempotency.Record{
				Key:         key,
				RequestHash: reqHash,
				Status:      rec2.status,
				Body:        rec2.body.Bytes(),
				ContentType: rec2.Header().Get("Content-Type"),
			})
			observability.IncrementIdempotencyEvent("recorded")
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}

func respondFromRecord(w http.ResponseWriter, rec *idempotency.Record) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotency-Replayed", "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
