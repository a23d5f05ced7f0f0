package mocks

import (
	"context"
	"encoding/json"

	"tiktokapi/internal/tiktok"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func rawList(args mock.Arguments) ([]json.RawMessage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

func (m *MockClient) UserInfo(ctx context.Context, username string) (json.RawMessage, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockClient) UserPlaylists(ctx context.Context, username string, count int) ([]json.RawMessage, error) {
	return rawList(m.Called(ctx, username, count))
}

func (m *MockClient) SearchUsers(ctx context.Context, query string, count int) ([]json.RawMessage, error) {
	return rawList(m.Called(ctx, query, count))
}

func (m *MockClient) Trending(ctx context.Context, count int) ([]json.RawMessage, error) {
	return rawList(m.Called(ctx, count))
}

func (m *MockClient) Hashtag(ctx context.Context, tag string, count int) (*tiktok.Hashtag, error) {
	args := m.Called(ctx, tag, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tiktok.Hashtag), args.Error(1)
}

func (m *MockClient) SoundVideos(ctx context.Context, soundID string, count int) ([]json.RawMessage, error) {
	return rawList(m.Called(ctx, soundID, count))
}

func (m *MockClient) Video(ctx context.Context, url string) (json.RawMessage, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockClient) Comments(ctx context.Context, videoID string, count int) ([]json.RawMessage, error) {
	return rawList(m.Called(ctx, videoID, count))
}
