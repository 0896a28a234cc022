package listcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Removal reasons used as the "reason" label.
const (
	reasonCapacity    = "capacity"
	reasonExpired     = "expired"
	reasonSwept       = "swept"
	reasonInvalidated = "invalidated"
)

type metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	removals  *prometheus.CounterVec
	mutations *prometheus.CounterVec
	entries   prometheus.Gauge
}

// newMetrics builds the cache collectors. A nil registerer leaves them unregistered,
// which keeps isolated stores in tests from colliding on the default registry.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_list_cache_hits_total",
			Help: "Number of list cache lookups answered from memory",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_list_cache_misses_total",
			Help: "Number of list cache lookups that had to fall back to the database",
		}),
		removals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_list_cache_removals_total",
			Help: "Entries removed from the list cache by reason",
		}, []string{"reason"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_list_cache_item_mutations_total",
			Help: "Cached lists patched in place after a book write, by operation",
		}, []string{"op"}),
		entries: f.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_list_cache_entries",
			Help: "Current number of cached lists",
		}),
	}
}
