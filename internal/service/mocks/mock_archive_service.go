package mocks

import (
	"context"
	"io"
	"time"

	"tiktokapi/internal/model"
	"tiktokapi/internal/service"
	"tiktokapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Record(ctx context.Context, operation, key string, payload []byte) (*model.Fetch, error) {
	args := m.Called(ctx, operation, key, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fetch), args.Error(1)
}

func (m *MockArchiveService) List(ctx context.Context, limit, offset int, operation string) (*service.FetchListResult, error) {
	args := m.Called(ctx, limit, offset, operation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchListResult), args.Error(1)
}

func (m *MockArchiveService) Get(ctx context.Context, id string) (*model.Fetch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fetch), args.Error(1)
}

func (m *MockArchiveService) PayloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) OpenPayload(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockArchiveService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
