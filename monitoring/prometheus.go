package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ftn/logx"
)

// Verb labels for the verb counters
const (
	VerbMint         = "mint"
	VerbBurn         = "burn"
	VerbTransfer     = "transfer"
	VerbRegister     = "register"
	VerbUnregister   = "unregister"
	VerbSetOwner     = "set_owner"
	VerbSetMaxSupply = "set_max_supply"
)

type ledgerPromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	totalSupply       prometheus.Gauge
	storageUsedBytes  prometheus.Gauge
	registeredAccts   prometheus.Gauge
	verbCount         *prometheus.CounterVec
	rejectedVerbCount *prometheus.CounterVec
	refundedTotal     prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ftn_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node start",
			},
		),
		totalSupply: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ftn_ledger_total_supply",
				Help: "The current total token supply (lossy float mirror of the exact counter)",
			},
		),
		storageUsedBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ftn_ledger_storage_used_bytes",
				Help: "The tracked byte usage of the ledger backing store",
			},
		),
		registeredAccts: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ftn_ledger_registered_accounts",
				Help: "The number of registered accounts",
			},
		),
		verbCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftn_ledger_verb_count",
				Help: "The total number of successfully committed verbs",
			},
			[]string{"verb"},
		),
		rejectedVerbCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ftn_ledger_rejected_verb_count",
				Help: "The total number of rejected verbs",
			},
			[]string{"verb", "reason"},
		),
		refundedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ftn_ledger_refund_count",
				Help: "The total number of storage/deposit refunds issued",
			},
		),
	}
}

var ledgerMetrics *ledgerPromMetrics

// InitMetrics initializes metrics for the node but does not expose them yet
func InitMetrics() {
	ledgerMetrics = newLedgerPromMetrics()
	ledgerMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func enabled() bool {
	return ledgerMetrics != nil
}

func SetTotalSupply(supply float64) {
	if enabled() {
		ledgerMetrics.totalSupply.Set(supply)
	}
}

func SetStorageUsedBytes(bytes uint64) {
	if enabled() {
		ledgerMetrics.storageUsedBytes.Set(float64(bytes))
	}
}

func SetRegisteredAccounts(count int) {
	if enabled() {
		ledgerMetrics.registeredAccts.Set(float64(count))
	}
}

func RecordVerb(verb string) {
	if enabled() {
		ledgerMetrics.verbCount.With(prometheus.Labels{"verb": verb}).Inc()
	}
}

func RecordRejectedVerb(verb, reason string) {
	if enabled() {
		ledgerMetrics.rejectedVerbCount.With(prometheus.Labels{
			"verb":   verb,
			"reason": reason,
		}).Inc()
	}
}

func IncreaseRefundCount() {
	if enabled() {
		ledgerMetrics.refundedTotal.Inc()
	}
}
