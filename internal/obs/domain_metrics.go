package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsTotal counts calculation requests by outcome.
	CalculationsTotal *prometheus.CounterVec
	// HistoryEntries reports the current ledger length.
	HistoryEntries prometheus.Gauge
	// HistoryEvictionsTotal counts entries dropped by the ledger capacity cap.
	HistoryEvictionsTotal prometheus.Counter
	// HistoryPersistFailures counts ledger writes that failed to reach storage.
	HistoryPersistFailures prometheus.Counter
	// HistoryLoadDegraded counts startups that fell back to an empty ledger.
	HistoryLoadDegraded *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of calculation requests by outcome.",
		}, []string{"result"})
		HistoryEntries = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Number of calculations currently held in the history ledger.",
		})
		HistoryEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_evictions_total",
			Help:      "Number of calculations evicted by the ledger capacity cap.",
		})
		HistoryPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "Number of ledger writes that failed to reach durable storage.",
		})
		HistoryLoadDegraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_load_degraded_total",
			Help:      "Number of ledger loads that fell back to an empty ledger.",
		}, []string{"reason"})

		mustRegisterCollector(reg, CalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, HistoryEntries, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				HistoryEntries = v
			}
		})
		mustRegisterCollector(reg, HistoryEvictionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				HistoryEvictionsTotal = v
			}
		})
		mustRegisterCollector(reg, HistoryPersistFailures, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				HistoryPersistFailures = v
			}
		})
		mustRegisterCollector(reg, HistoryLoadDegraded, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				HistoryLoadDegraded = v
			}
		})
	})
}

// RecordCalculation increments the calculation counter when metrics are registered.
func RecordCalculation(result string) {
	if CalculationsTotal != nil {
		CalculationsTotal.WithLabelValues(result).Inc()
	}
}

// SetHistoryEntries updates the ledger length gauge.
func SetHistoryEntries(n int) {
	if HistoryEntries != nil {
		HistoryEntries.Set(float64(n))
	}
}

// AddHistoryEvictions counts evicted ledger entries.
func AddHistoryEvictions(n int) {
	if HistoryEvictionsTotal != nil && n > 0 {
		HistoryEvictionsTotal.Add(float64(n))
	}
}

// IncHistoryPersistFailure counts a failed ledger write.
func IncHistoryPersistFailure() {
	if HistoryPersistFailures != nil {
		HistoryPersistFailures.Inc()
	}
}

// IncHistoryLoadDegraded counts a ledger load that degraded to empty.
func IncHistoryLoadDegraded(reason string) {
	if HistoryLoadDegraded != nil {
		HistoryLoadDegraded.WithLabelValues(reason).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
