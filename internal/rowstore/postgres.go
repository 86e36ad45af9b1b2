package rowstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements Store on a single sheet_rows table that emulates the
// positional row model: (sheet, pos, cells). Positions are managed here, not
// by the database — DeleteRow compacts them in a transaction.
type Postgres struct {
	db db
}

// NewPostgres constructs a Store backed by the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewPostgres(db db) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

func (s *Postgres) GetRows(ctx context.Context, sheet string) ([][]string, error) {
	const q = `
		SELECT cells FROM sheet_rows
		WHERE sheet = @sheet
		ORDER BY pos`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"sheet": sheet})
	if err != nil {
		return nil, fmt.Errorf("rowstore.Postgres.GetRows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("rowstore.Postgres.GetRows: scan: %w", err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rowstore.Postgres.GetRows: rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) GetRow(ctx context.Context, sheet string, pos int) ([]string, error) {
	const q = `
		SELECT cells FROM sheet_rows
		WHERE sheet = @sheet AND pos = @pos`

	var cells []string
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"sheet": sheet, "pos": pos}).Scan(&cells)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rowstore.Postgres.GetRow: %s row %d: %w", sheet, pos, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("rowstore.Postgres.GetRow: %w", err)
	}
	return cells, nil
}

// AppendRow assigns the next position with a max(pos)+1 subselect rather
// than a sequence: positions must stay dense per sheet because DeleteRow
// compacts them. Trip and leg appends are serialized by the store-wide
// exclusive lock; cache sheets tolerate a racing duplicate position.
func (s *Postgres) AppendRow(ctx context.Context, sheet string, cells []string) error {
	const q = `
		INSERT INTO sheet_rows (sheet, pos, cells)
		SELECT @sheet, COALESCE(MAX(pos), 0) + 1, @cells
		FROM sheet_rows WHERE sheet = @sheet`

	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{"sheet": sheet, "cells": cells})
	if err != nil {
		return fmt.Errorf("rowstore.Postgres.AppendRow: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateCell(ctx context.Context, sheet string, pos, col int, value string) error {
	const q = `
		UPDATE sheet_rows
		SET cells[@col] = @value
		WHERE sheet = @sheet AND pos = @pos`

	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"sheet": sheet, "pos": pos, "col": col, "value": value})
	if err != nil {
		return fmt.Errorf("rowstore.Postgres.UpdateCell: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rowstore.Postgres.UpdateCell: %s row %d: %w", sheet, pos, domain.ErrNotFound)
	}
	return nil
}

// DeleteRow removes the row and shifts every later row up by one, in a
// single transaction so a crash cannot leave a gap in the positions.
func (s *Postgres) DeleteRow(ctx context.Context, sheet string, pos int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rowstore.Postgres.DeleteRow: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{"sheet": sheet, "pos": pos}

	tag, err := tx.Exec(ctx, `DELETE FROM sheet_rows WHERE sheet = @sheet AND pos = @pos`, args)
	if err != nil {
		return fmt.Errorf("rowstore.Postgres.DeleteRow: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rowstore.Postgres.DeleteRow: %s row %d: %w", sheet, pos, domain.ErrNotFound)
	}

	_, err = tx.Exec(ctx, `UPDATE sheet_rows SET pos = pos - 1 WHERE sheet = @sheet AND pos > @pos`, args)
	if err != nil {
		return fmt.Errorf("rowstore.Postgres.DeleteRow: shift: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("rowstore.Postgres.DeleteRow: commit: %w", err)
	}
	return nil
}

func (s *Postgres) FindExactMatch(ctx context.Context, sheet string, value string, col int) (int, error) {
	const q = `
		SELECT pos FROM sheet_rows
		WHERE sheet = @sheet AND pos > 1 AND cells[@col] = @value
		ORDER BY pos
		LIMIT 1`

	var pos int
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"sheet": sheet, "col": col, "value": value}).Scan(&pos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("rowstore.Postgres.FindExactMatch: %s %q: %w", sheet, value, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("rowstore.Postgres.FindExactMatch: %w", err)
	}
	return pos, nil
}
