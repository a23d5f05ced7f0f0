package repository

import (
	"context"

	"tiktokapi/internal/model"
)

// FetchRepository defines data access for archived fetches. Archive rules live in the service layer.
type FetchRepository interface {
	// Create inserts a new fetch record and returns the stored row.
	Create(ctx context.Context, f *model.Fetch) (*model.Fetch, error)

	// FindByID returns a fetch by its ID. It returns sql.ErrNoRows when missing.
	FindByID(ctx context.Context, id string) (*model.Fetch, error)

	// List returns a page of fetches, newest first, and the total count for the filter.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Fetch], error)

	// Delete removes a fetch by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
// An empty Operation matches every operation.
type PageQuery struct {
	Limit     int
	Offset    int
	Operation string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
