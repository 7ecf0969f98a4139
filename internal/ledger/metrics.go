package ledger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// All ledger metrics carry a "ledger" label set from ProviderConfig.Group.
var (
	// HitsTotal counts ids found in the ledger.
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_hits_total",
			Help: "Total number of movie ids already present in the ledger.",
		},
		[]string{"ledger"},
	)

	// MissesTotal counts ids not found in the ledger.
	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_misses_total",
			Help: "Total number of movie ids not present in the ledger.",
		},
		[]string{"ledger"},
	)

	// EvictionsTotal counts ids evicted from the memory ledger.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_evictions_total",
			Help: "Total number of movie ids evicted from the ledger.",
		},
		[]string{"ledger"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		EvictionsTotal,
	)
}

// entriesCollector reports the ledger size by calling lenFunc at scrape time.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesCollectorMu sync.Mutex
	entriesCollectors  = make(map[string]*entriesCollector)
	// entriesReg is swapped for an isolated registry in tests.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector replaces any collector already registered for group.
func registerEntriesCollector(group string, lenFunc func() int) *entriesCollector {
	desc := prometheus.NewDesc(
		"ledger_entries",
		"Current number of movie ids in the ledger.",
		nil,
		prometheus.Labels{"ledger": group},
	)
	c := &entriesCollector{desc: desc, lenFunc: lenFunc}

	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
	return c
}

func unregisterEntriesCollector(group string) {
	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
