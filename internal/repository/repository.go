// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository implements the credential store on top of sqlx.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vinovest/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert or update hits the
	// unique index on users.email.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername is returned when an insert or update hits the
	// unique index on users.username.
	ErrDuplicateUsername = errors.New("username already exists")
)

// querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx, so every
// repository method works both standalone and inside a transaction.
type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository provides database access for all entities.
type Repository struct {
	q  querier
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{q: db, db: db}
}

// InTx runs fn with a Repository bound to a single transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
// Reconciliation operations use this so that read-decide-write sequences
// are atomic under concurrent requests for the same account.
func (r *Repository) InTx(ctx context.Context, fn func(*Repository) error) error {
	if r.db == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// wrapError converts driver errors to repository errors. Unique-constraint
// violations are mapped per column so that a lost race on insert surfaces
// as the same duplicate error an up-front existence check would produce.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			msg := se.Error()
			switch {
			case strings.Contains(msg, "users.email"):
				return ErrDuplicateEmail
			case strings.Contains(msg, "users.username"):
				return ErrDuplicateUsername
			}
		}
	}

	return err
}
