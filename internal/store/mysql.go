package store

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func init() {
	Register("mysql", newMySQLStore)
}

func mysqlDialect(table string) dialect {
	quoted := "`" + table + "`"
	return dialect{
		driver: "mysql",
		createTable: `CREATE TABLE IF NOT EXISTS ` + quoted + ` (
			` + "`id`" + ` BIGINT NOT NULL PRIMARY KEY,
			` + "`tmdb_id`" + ` BIGINT NOT NULL,
			` + "`imdb_id`" + ` BIGINT NOT NULL
		) DEFAULT CHARSET=utf8mb4`,
		insert: "INSERT INTO " + quoted + " (`id`, `tmdb_id`, `imdb_id`) VALUES (:id, :tmdb_id, :imdb_id)",
		upsert: "INSERT INTO " + quoted + " (`id`, `tmdb_id`, `imdb_id`) VALUES (:id, :tmdb_id, :imdb_id) " +
			"ON DUPLICATE KEY UPDATE `tmdb_id` = VALUES(`tmdb_id`), `imdb_id` = VALUES(`imdb_id`)",
		get:   "SELECT `id`, `tmdb_id`, `imdb_id` FROM " + quoted + " WHERE `id` = ?",
		count: "SELECT COUNT(*) FROM " + quoted,
	}
}

// mysqlDSN builds a go-sql-driver DSN from the discrete connection settings.
func mysqlDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.Timeout = cfg.ConnectTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func newMySQLStore(ctx context.Context, cfg Config) (Store, error) {
	db, err := sqlx.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// One connection for the lifetime of the run.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}

	return &sqlStore{db: db, table: cfg.Table, dialect: mysqlDialect(cfg.Table)}, nil
}
