package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tiktokapi/internal/model"
	"tiktokapi/internal/tiktok"
)

const (
	DefaultCount = 30
	MaxCount     = 100

	archiveTimeout = 5 * time.Second
)

var ErrParamRequired = errors.New("parameter is required")

// Operation names, also used as archive partitions.
const (
	OpUser          = "user"
	OpUserPlaylists = "user_playlists"
	OpSearch        = "search"
	OpTrending      = "trending"
	OpHashtag       = "hashtag"
	OpSound         = "sound"
	OpVideo         = "video"
	OpComments      = "comments"
)

// TikTokClient is the subset of *tiktok.Client the service depends on.
type TikTokClient interface {
	UserInfo(ctx context.Context, username string) (json.RawMessage, error)
	UserPlaylists(ctx context.Context, username string, count int) ([]json.RawMessage, error)
	SearchUsers(ctx context.Context, query string, count int) ([]json.RawMessage, error)
	Trending(ctx context.Context, count int) ([]json.RawMessage, error)
	Hashtag(ctx context.Context, tag string, count int) (*tiktok.Hashtag, error)
	SoundVideos(ctx context.Context, soundID string, count int) ([]json.RawMessage, error)
	Video(ctx context.Context, url string) (json.RawMessage, error)
	Comments(ctx context.Context, videoID string, count int) ([]json.RawMessage, error)
}

// Recorder persists the payload of a successful lookup.
type Recorder interface {
	Record(ctx context.Context, operation, key string, payload []byte) (*model.Fetch, error)
}

// TikTokService defines the lookups served over HTTP. Each method forwards
// its arguments to the client and wraps the result in a response envelope.
type TikTokService interface {
	User(ctx context.Context, username string) (*model.UserInfo, error)
	UserPlaylists(ctx context.Context, username string, count int) (*model.UserPlaylists, error)
	Search(ctx context.Context, query string, count int) (*model.SearchResults, error)
	Trending(ctx context.Context, count int) (*model.Trending, error)
	Hashtag(ctx context.Context, tag string, count int) (*model.Hashtag, error)
	Sound(ctx context.Context, soundID string, count int) (*model.Sound, error)
	Video(ctx context.Context, url string) (*model.Video, error)
	Comments(ctx context.Context, videoID string, count int) (*model.Comments, error)
}

type tiktokService struct {
	client   TikTokClient
	recorder Recorder
	log      *zap.Logger
	group    singleflight.Group
}

// NewTikTokService constructs a TikTokService. recorder may be nil, in which
// case nothing is archived.
func NewTikTokService(client TikTokClient, recorder Recorder, log *zap.Logger) TikTokService {
	if log == nil {
		log = zap.NewNop()
	}
	return &tiktokService{client: client, recorder: recorder, log: log}
}

// NormalizeCount applies the default and upper bound to a requested item count.
func NormalizeCount(count int) int {
	if count <= 0 {
		return DefaultCount
	}
	if count > MaxCount {
		return MaxCount
	}
	return count
}

func (s *tiktokService) User(ctx context.Context, username string) (*model.UserInfo, error) {
	if username == "" {
		return nil, ErrParamRequired
	}
	return do(ctx, s, OpUser, username, 0, func(ctx context.Context) (*model.UserInfo, error) {
		info, err := s.client.UserInfo(ctx, username)
		if err != nil {
			return nil, err
		}
		return &model.UserInfo{Username: username, UserInfo: info}, nil
	})
}

func (s *tiktokService) UserPlaylists(ctx context.Context, username string, count int) (*model.UserPlaylists, error) {
	if username == "" {
		return nil, ErrParamRequired
	}
	count = NormalizeCount(count)
	return do(ctx, s, OpUserPlaylists, username, count, func(ctx context.Context) (*model.UserPlaylists, error) {
		items, err := s.client.UserPlaylists(ctx, username, count)
		if err != nil {
			return nil, err
		}
		return &model.UserPlaylists{Username: username, Playlists: items}, nil
	})
}

func (s *tiktokService) Search(ctx context.Context, query string, count int) (*model.SearchResults, error) {
	if query == "" {
		return nil, ErrParamRequired
	}
	count = NormalizeCount(count)
	return do(ctx, s, OpSearch, query, count, func(ctx context.Context) (*model.SearchResults, error) {
		items, err := s.client.SearchUsers(ctx, query, count)
		if err != nil {
			return nil, err
		}
		return &model.SearchResults{Query: query, Results: items}, nil
	})
}

func (s *tiktokService) Trending(ctx context.Context, count int) (*model.Trending, error) {
	count = NormalizeCount(count)
	return do(ctx, s, OpTrending, "", count, func(ctx context.Context) (*model.Trending, error) {
		items, err := s.client.Trending(ctx, count)
		if err != nil {
			return nil, err
		}
		return &model.Trending{Videos: items}, nil
	})
}

func (s *tiktokService) Hashtag(ctx context.Context, tag string, count int) (*model.Hashtag, error) {
	if tag == "" {
		return nil, ErrParamRequired
	}
	count = NormalizeCount(count)
	return do(ctx, s, OpHashtag, tag, count, func(ctx context.Context) (*model.Hashtag, error) {
		h, err := s.client.Hashtag(ctx, tag, count)
		if err != nil {
			return nil, err
		}
		return &model.Hashtag{Tag: tag, Info: h.Info, Videos: h.Videos}, nil
	})
}

func (s *tiktokService) Sound(ctx context.Context, soundID string, count int) (*model.Sound, error) {
	if soundID == "" {
		return nil, ErrParamRequired
	}
	count = NormalizeCount(count)
	return do(ctx, s, OpSound, soundID, count, func(ctx context.Context) (*model.Sound, error) {
		items, err := s.client.SoundVideos(ctx, soundID, count)
		if err != nil {
			return nil, err
		}
		return &model.Sound{SoundID: soundID, Videos: items}, nil
	})
}

func (s *tiktokService) Video(ctx context.Context, url string) (*model.Video, error) {
	if url == "" {
		return nil, ErrParamRequired
	}
	return do(ctx, s, OpVideo, url, 0, func(ctx context.Context) (*model.Video, error) {
		info, err := s.client.Video(ctx, url)
		if err != nil {
			return nil, err
		}
		return &model.Video{URL: url, VideoInfo: info}, nil
	})
}

func (s *tiktokService) Comments(ctx context.Context, videoID string, count int) (*model.Comments, error) {
	if videoID == "" {
		return nil, ErrParamRequired
	}
	count = NormalizeCount(count)
	return do(ctx, s, OpComments, videoID, count, func(ctx context.Context) (*model.Comments, error) {
		items, err := s.client.Comments(ctx, videoID, count)
		if err != nil {
			return nil, err
		}
		return &model.Comments{VideoID: videoID, Comments: items}, nil
	})
}

// do runs fetch once for all concurrent callers asking for the same
// operation, key and count. The shared call is detached from any single
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func do[T any](ctx context.Context, s *tiktokService, op, key string, count int, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	flightKey := op + "\x00" + key + "\x00" + strconv.Itoa(count)
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(flightKey, func() (any, error) {
		res, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		s.archive(shared, op, key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

func (s *tiktokService) archive(ctx context.Context, op, key string, res any) {
	if s.recorder == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		s.log.Warn("archive_encode_failed", zap.String("operation", op), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	if _, err := s.recorder.Record(ctx, op, key, payload); err != nil {
		s.log.Warn("archive_record_failed", zap.String("operation", op), zap.String("lookup_key", key), zap.Error(err))
	}
}
