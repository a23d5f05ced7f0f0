package postgres

import (
	"context"
	"database/sql"

	"tiktokapi/internal/model"
	"tiktokapi/internal/repository"
)

// FetchPostgres is a PostgreSQL implementation of repository.FetchRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FetchPostgres struct {
	db *sql.DB
}

// NewFetchPostgres creates a new FetchPostgres repository.
func NewFetchPostgres(db *sql.DB) *FetchPostgres {
	return &FetchPostgres{db: db}
}

var _ repository.FetchRepository = (*FetchPostgres)(nil)

// Create inserts a new fetch row and returns the stored record.
func (r *FetchPostgres) Create(ctx context.Context, f *model.Fetch) (*model.Fetch, error) {
	const q = `
		INSERT INTO fetches (id, operation, lookup_key, storage_path, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, operation, lookup_key, storage_path, size, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Operation,
		f.LookupKey,
		f.StoragePath,
		f.Size,
		f.CreatedAt,
	)
	var out model.Fetch
	if err := scanFetch(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single record by its ID.
func (r *FetchPostgres) FindByID(ctx context.Context, id string) (*model.Fetch, error) {
	const q = `
		SELECT id, operation, lookup_key, storage_path, size, created_at
		FROM fetches
		WHERE id = $1
	`
	var f model.Fetch
	if err := scanFetch(r.db.QueryRowContext(ctx, q, id), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns fetches using LIMIT/OFFSET pagination and a total count.
// The operation filter is applied with ($1 = '' OR operation = $1) so one
// statement serves both filtered and unfiltered listings.
func (r *FetchPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Fetch], error) {
	const qCount = `SELECT COUNT(*) FROM fetches WHERE ($1 = '' OR operation = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pq.Operation).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, operation, lookup_key, storage_path, size, created_at
		FROM fetches
		WHERE ($1 = '' OR operation = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Operation, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Fetch, 0)
	for rows.Next() {
		var f model.Fetch
		if err := scanFetch(rows, &f); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Fetch]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a fetch by ID. It does not return an error if the row does not exist.
func (r *FetchPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM fetches WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetch(s scanner, f *model.Fetch) error {
	return s.Scan(
		&f.ID,
		&f.Operation,
		&f.LookupKey,
		&f.StoragePath,
		&f.Size,
		&f.CreatedAt,
	)
}
