package main

import (
	"context"
	"io"
	"time"

	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/ledger"
	"github.com/Belphemur/MovieLinks/internal/source"
	"github.com/Belphemur/MovieLinks/internal/store"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	db := cfg.Database
	return store.New(ctx, db.Driver, store.Config{
		DSN:            db.DSN,
		Host:           db.Host,
		Port:           db.Port,
		User:           db.User,
		Password:       db.Password,
		Database:       db.Name,
		Table:          db.Table,
		ConnectTimeout: config.ParseDuration("database.connect_timeout", db.ConnectTimeout, 10*time.Second),
	})
}

// openSource treats "-" as standard input.
func openSource(ctx context.Context, cfg *config.Config, stdin io.Reader) (*source.Source, error) {
	if cfg.Source.Path == "-" {
		return source.FromReader("stdin", stdin, cfg.Source.Encoding)
	}
	return source.Open(ctx, source.Options{
		Path:      cfg.Source.Path,
		Entry:     cfg.Source.Entry,
		Encoding:  cfg.Source.Encoding,
		Timeout:   config.ParseDuration("source.timeout", cfg.Source.Timeout, time.Minute),
		Proxy:     cfg.ProxyConnectionString,
		UserAgent: cfg.UserAgent,
	})
}

// openLedger namespaces the ledger by table so two tables never share ids.
func openLedger(cfg *config.Config) (ledger.Ledger, error) {
	l := cfg.Ledger
	return ledger.New(l.Provider, ledger.ProviderConfig{
		Size:          l.Size,
		TTL:           config.ParseDuration("ledger.ttl", l.TTL, 24*time.Hour),
		Namespace:     cfg.Database.Driver + ":" + cfg.Database.Name + ":" + cfg.Database.Table,
		Logger:        config.GetLogger(),
		RedisAddress:  l.Redis.Address,
		RedisPassword: l.Redis.Password,
		RedisDB:       l.Redis.DB,
		Group:         "import",
	})
}
