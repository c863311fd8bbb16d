package dbstorage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type contextKey int

const (
	transactionKey contextKey = iota
)

//go:embed schema.sql
var schemaSQL string

var errNoTransaction = errors.New("no transaction")

type DBFactory interface {
	Create() (*sql.DB, error)
}

// SQLiteFactory opens a local journal file. SQLite allows a single writer, so
// the pool is limited to one connection.
type SQLiteFactory struct {
	path string
}

func NewSQLiteFactory(path string) *SQLiteFactory {
	return &SQLiteFactory{
		path: path,
	}
}

func (f *SQLiteFactory) Create() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return db, nil
}

type DBStorage struct {
	db *sql.DB
}

func New(dbFactory DBFactory) (*DBStorage, error) {
	db, err := dbFactory.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	_, err = db.Exec(schemaSQL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return &DBStorage{
		db: db,
	}, nil
}

func (s *DBStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// DoWithTransaction runs f in a transaction carried by the ctx it receives.
func (s *DBStorage) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	if _, err := getTransaction(ctx); err == nil {
		return f(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction begin failed: %w", err)
	}
	err = f(context.WithValue(ctx, transactionKey, tx))
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction rollback failed: %w, rollback caused by %w", rollbackErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (s *DBStorage) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx, err := getTransaction(ctx)
	if err != nil {
		switch {
		case errors.Is(err, errNoTransaction):
			return s.db.ExecContext(ctx, query, args...) //nolint:wrapcheck // unnecessary
		default:
			return nil, err
		}
	}
	return tx.ExecContext(ctx, query, args...) //nolint:wrapcheck // unnecessary
}

func (s *DBStorage) QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	tx, err := getTransaction(ctx)
	if err != nil {
		switch {
		case errors.Is(err, errNoTransaction):
			return s.db.QueryRowContext(ctx, query, args...), nil
		default:
			return nil, err
		}
	}
	return tx.QueryRowContext(ctx, query, args...), nil
}

func (s *DBStorage) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	tx, err := getTransaction(ctx)
	if err != nil {
		switch {
		case errors.Is(err, errNoTransaction):
			return s.db.QueryContext(ctx, query, args...) //nolint:wrapcheck // unnecessary
		default:
			return nil, err
		}
	}
	return tx.QueryContext(ctx, query, args...) //nolint:wrapcheck // unnecessary
}

func getTransaction(ctx context.Context) (*sql.Tx, error) {
	txVal := ctx.Value(transactionKey)
	if txVal == nil {
		return nil, errNoTransaction
	}
	tx, ok := txVal.(*sql.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	return tx, nil
}
