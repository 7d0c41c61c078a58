package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpDurationHistogram     *prometheus.HistogramVec
	transactionsPostedCounter *prometheus.CounterVec
	transfersCounter          *prometheus.CounterVec
	insufficientFundsCounter  prometheus.Counter
	pendingVerificationGauge  prometheus.Gauge
	idempotencyCounter        *prometheus.CounterVec
	workerRunCounter          *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		transactionsPostedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_posted_total",
			Help: "Transactions posted to the ledger",
		}, []string{"kind", "category"})

		transfersCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Transfer outcomes",
		}, []string{"result"})

		insufficientFundsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_insufficient_funds_total",
			Help: "Debits rejected for insufficient funds",
		})

		pendingVerificationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_pending_verifications",
			Help: "Accounts currently awaiting identity verification",
		})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			transactionsPostedCounter,
			transfersCounter,
			insufficientFundsCounter,
			pendingVerificationGauge,
			idempotencyCounter,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementTransactionPosted(kind, category string) {
	if transactionsPostedCounter == nil {
		return
	}
	transactionsPostedCounter.WithLabelValues(kind, category).Inc()
}

func IncrementTransfer(result string) {
	if transfersCounter == nil {
		return
	}
	transfersCounter.WithLabelValues(result).Inc()
}

func IncrementInsufficientFunds() {
	if insufficientFundsCounter == nil {
		return
	}
	insufficientFundsCounter.Inc()
}

func SetPendingVerifications(n int64) {
	if pendingVerificationGauge == nil {
		return
	}
	pendingVerificationGauge.Set(float64(n))
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
