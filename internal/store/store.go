// Package store writes link records to a relational table. Drivers register
// themselves under a name ("mysql", "postgres", "sqlite") and are created
// through New.
package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/Belphemur/MovieLinks/internal/models"
)

// Store persists links in a table keyed by movie id.
type Store interface {
	// EnsureTable creates the destination table when it does not exist.
	EnsureTable(ctx context.Context) error

	// Write stores links in the given mode. A single link is one INSERT; more
	// links run in one transaction that is rolled back on the first error.
	// It returns the number of rows written. In insert mode an existing id
	// fails the write with *apperrors.ErrDuplicateLink.
	Write(ctx context.Context, links []models.Link, mode models.WriteMode) (int, error)

	// Get returns the stored link for movieID, or nil when there is none.
	Get(ctx context.Context, movieID int64) (*models.Link, error)

	// Count returns the number of rows in the table.
	Count(ctx context.Context) (int64, error)

	// Driver returns the name the store was registered under.
	Driver() string

	// Table returns the destination table name.
	Table() string

	// Close releases the database connection.
	Close() error
}

// Config holds what a provider needs to connect.
type Config struct {
	// DSN is a driver-specific connection string. When set it takes precedence
	// over Host, Port, User, Password and Database.
	DSN string

	Host     string
	Port     int
	User     string
	Password string

	// Database is the schema name, or the file path for SQLite.
	Database string

	// Table is the destination table, a plain SQL identifier.
	Table string

	// ConnectTimeout bounds the initial connection and ping.
	ConnectTimeout time.Duration
}

// Provider is a constructor function that opens a Store from config.
type Provider func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Register registers a store provider under the given driver name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("store: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("store: provider %q already registered", name))
	}
	providers[name] = p
}

// New opens a Store using the named driver. The connection is verified
// before New returns.
func New(ctx context.Context, name string, cfg Config) (Store, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (registered: %v)", name, RegisteredDrivers())
	}
	if !identifierPattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("store: invalid table name %q", cfg.Table)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	return p(ctx, cfg)
}

// RegisteredDrivers returns a sorted list of registered driver names.
func RegisteredDrivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
