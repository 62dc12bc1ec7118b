package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Open connects with the named dialect and pings. The pool is capped at one
// connection: the mapper assumes a single shared, exclusive handle, and an
// in-memory SQLite database only exists on the connection that created it.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	d, err := DialectByName(driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	if d.Name == MySQL.Name {
		if dsn, err = withFoundRows(dsn); err != nil {
			return nil, Dialect{}, err
		}
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("open %s: %w", d.Name, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	return db, d, nil
}

// withFoundRows makes MySQL report matched rather than changed rows, so an
// UPDATE that rewrites identical values still counts as one row.
func withFoundRows(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
