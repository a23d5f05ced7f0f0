package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"tiktokapi/internal/model"
	"tiktokapi/internal/repository"
	"tiktokapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("fetch not found")
	ErrPayloadNil = errors.New("payload is empty")
	ErrOpRequired = errors.New("operation is required")
)

// DefaultURLLife is the expiry used for payload URLs when none is given.
const DefaultURLLife = 15 * time.Minute

// FetchListResult is the service-level DTO for paginated fetches.
type FetchListResult struct {
	Items []model.Fetch `json:"data"`
	Total int           `json:"total"`
}

// ArchiveService keeps raw payloads of successful lookups in object storage
// and their metadata in the database.
type ArchiveService interface {
	// Record stores payload, then its metadata. The object is removed again if the metadata write fails.
	Record(ctx context.Context, operation, key string, payload []byte) (*model.Fetch, error)

	// List returns fetches using limit/offset, optionally filtered by operation, and a total count.
	List(ctx context.Context, limit, offset int, operation string) (*FetchListResult, error)

	// Get returns a single fetch by its ID.
	Get(ctx context.Context, id string) (*model.Fetch, error)

	// PayloadURL returns a time-limited download URL for a fetch payload.
	PayloadURL(ctx context.Context, id string, expiry time.Duration) (string, error)

	// OpenPayload streams a fetch payload. The caller must close the reader.
	OpenPayload(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// Delete removes a fetch from both storage and repository.
	Delete(ctx context.Context, id string) error
}

type archiveService struct {
	store storage.Storage
	repo  repository.FetchRepository
}

// NewArchiveService constructs a new ArchiveService.
func NewArchiveService(store storage.Storage, repo repository.FetchRepository) ArchiveService {
	return &archiveService{store: store, repo: repo}
}

func (s *archiveService) Record(ctx context.Context, operation, key string, payload []byte) (*model.Fetch, error) {
	if operation == "" {
		return nil, ErrOpRequired
	}
	if len(payload) == 0 {
		return nil, ErrPayloadNil
	}

	id := uuid.New().String()
	objKey := path.Join("fetches", operation, id+".json")

	info, err := s.store.Put(ctx, objKey, bytes.NewReader(payload), storage.PutObjectOptions{
		Size:        int64(len(payload)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"operation":  operation,
			"lookup-key": key,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	f := &model.Fetch{
		ID:          id,
		Operation:   operation,
		LookupKey:   key,
		StoragePath: info.Key,
		Size:        info.Size,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		if delErr := s.store.Delete(ctx, objKey); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *archiveService) List(ctx context.Context, limit, offset int, operation string) (*FetchListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxCount {
		limit = MaxCount
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, Operation: operation})
	if err != nil {
		return nil, err
	}
	return &FetchListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *archiveService) Get(ctx context.Context, id string) (*model.Fetch, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *archiveService) PayloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = DefaultURLLife
	}
	return s.store.PresignGet(ctx, f.StoragePath, expiry)
}

func (s *archiveService) OpenPayload(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, f.StoragePath)
}

// Delete removes the object first; if that fails the row is kept so the object is not orphaned.
func (s *archiveService) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
