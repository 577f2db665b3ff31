package store

import (
	"context"
	"fmt"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Open connects to the configured backend and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		if dsn == "" {
			dsn = "postgres://localhost:5432/qualis?sslmode=disable"
		}
		return NewPostgresStore(ctx, dsn)
	case DriverSQLite:
		return NewSQLiteStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}
