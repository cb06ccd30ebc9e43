package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// DriverName is the sqlite3 driver with the blog's SQL functions registered.
const DriverName = "sqlite3_blog"

//go:embed schema.sql
var schema string

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// casefold(s) gives Unicode-aware case-insensitive matching,
			// SQLite's own LIKE and lower() only fold ASCII.
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

func casefold(s string) string {
	return cases.Fold().String(s)
}

type Database struct {
	DBConn *sql.DB
}

// Open connects to the SQLite file at path and makes sure the schema exists.
func Open(ctx context.Context, path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dbconn, err := sql.Open(DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database := &Database{DBConn: dbconn}

	if err := database.Ping(ctx); err != nil {
		dbconn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := database.Migrate(ctx); err != nil {
		dbconn.Close()
		return nil, err
	}

	return database, nil
}

func dsn(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + params.Encode()
}

// Migrate creates any missing tables and indexes.
func (d *Database) Migrate(ctx context.Context) error {
	if _, err := d.DBConn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if d.DBConn != nil {
		return d.DBConn.Close()
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.DBConn.PingContext(ctx)
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// column (given as "table.column"), or on any column when column is empty.
func isUniqueViolation(err error, column string) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return column == "" || strings.Contains(se.Error(), column)
}

// utcNow is the clock used for every stored timestamp.
func utcNow() time.Time {
	return time.Now().UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}
