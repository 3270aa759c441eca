// Package sql implements the reconciler storage on Postgres or SQLite using sqlx.
package sql

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Repository reads address_utxo, prunes tx_input and keeps reconciler flags in watch_state.
type Repository struct {
	db      *sqlx.DB
	metrics Metrics
}

func NewRepository(driver, dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("sql dsn is required")
	}
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return &Repository{db: db, metrics: metrics}, nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}
