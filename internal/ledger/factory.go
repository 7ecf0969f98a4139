package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProviderConfig holds the configuration needed to create a ledger.
type ProviderConfig struct {
	// Size is the maximum number of ids kept by the memory provider. 0 means unbounded.
	Size int

	// TTL is how long a marked id is remembered. 0 means forever.
	TTL time.Duration

	// Namespace separates ledgers of different destination tables.
	Namespace string

	// OnEvict is called when an id is evicted. Not all providers support this.
	OnEvict EvictCallback

	// Logger receives error reports from backend operations.
	Logger zerolog.Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group labels the ledger_* metrics. When non-empty the ledger is wrapped
	// with metric instrumentation.
	Group string
}

// Provider is a constructor function that creates a Ledger from config.
type Provider func(cfg ProviderConfig) (Ledger, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a ledger provider under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("ledger: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("ledger: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a Ledger using the named provider. An empty name selects "none".
func New(name string, cfg ProviderConfig) (Ledger, error) {
	if name == "" {
		name = "none"
	}

	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("ledger: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	original := cfg.OnEvict
	cfg.OnEvict = func(id int64) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(id)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}

	return newInstrumentedLedger(inner, group), nil
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
