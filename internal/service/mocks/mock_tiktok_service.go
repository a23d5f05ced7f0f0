package mocks

import (
	"context"

	"tiktokapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTikTokService struct {
	mock.Mock
}

func (m *MockTikTokService) User(ctx context.Context, username string) (*model.UserInfo, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserInfo), args.Error(1)
}

func (m *MockTikTokService) UserPlaylists(ctx context.Context, username string, count int) (*model.UserPlaylists, error) {
	args := m.Called(ctx, username, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserPlaylists), args.Error(1)
}

func (m *MockTikTokService) Search(ctx context.Context, query string, count int) (*model.SearchResults, error) {
	args := m.Called(ctx, query, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResults), args.Error(1)
}

func (m *MockTikTokService) Trending(ctx context.Context, count int) (*model.Trending, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trending), args.Error(1)
}

func (m *MockTikTokService) Hashtag(ctx context.Context, tag string, count int) (*model.Hashtag, error) {
	args := m.Called(ctx, tag, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hashtag), args.Error(1)
}

func (m *MockTikTokService) Sound(ctx context.Context, soundID string, count int) (*model.Sound, error) {
	args := m.Called(ctx, soundID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sound), args.Error(1)
}

func (m *MockTikTokService) Video(ctx context.Context, url string) (*model.Video, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockTikTokService) Comments(ctx context.Context, videoID string, count int) (*model.Comments, error) {
	args := m.Called(ctx, videoID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comments), args.Error(1)
}
