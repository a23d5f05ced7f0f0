package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Hashtag is a challenge's detail object and its videos.
type Hashtag struct {
	Info   json.RawMessage
	Videos []json.RawMessage
}

// UserInfo returns the raw userInfo object for a username.
func (c *Client) UserInfo(ctx context.Context, username string) (json.RawMessage, error) {
	info, _, err := c.userDetail(ctx, username)
	return info, err
}

// userDetail fetches userInfo and the secUid other user endpoints key on.
func (c *Client) userDetail(ctx context.Context, username string) (json.RawMessage, string, error) {
	q := url.Values{}
	q.Set("uniqueId", username)
	q.Set("secUid", "")

	var (
		info   json.RawMessage
		secUID string
	)
	err := c.getJSON(ctx, "user_detail", "/api/user/detail/", q, func(m map[string]json.RawMessage) error {
		raw, ok := m["userInfo"]
		if !ok || isNull(raw) {
			return ErrEmptyResponse
		}
		var u struct {
			User struct {
				SecUID string `json:"secUid"`
			} `json:"user"`
		}
		if err := json.Unmarshal(raw, &u); err != nil {
			return fmt.Errorf("%w: userInfo: %v", ErrInvalidJSON, err)
		}
		info, secUID = raw, u.User.SecUID
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return info, secUID, nil
}

// UserPlaylists lists up to count playlists created by username.
func (c *Client) UserPlaylists(ctx context.Context, username string, count int) ([]json.RawMessage, error) {
	_, secUID, err := c.userDetail(ctx, username)
	if err != nil {
		return nil, err
	}
	if secUID == "" {
		return nil, ErrEmptyResponse
	}

	q := url.Values{}
	q.Set("secUid", secUID)
	return c.collect(ctx, listRequest{
		endpoint: "user_playlist",
		path:     "/api/user/playlist/",
		query:    q,
		listKey:  "playList",
		pageSize: 20,
	}, count)
}

// SearchUsers returns up to count user results for query.
func (c *Client) SearchUsers(ctx context.Context, query string, count int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("keyword", query)
	q.Set("from_page", "search")
	return c.collect(ctx, listRequest{
		endpoint: "search_user",
		path:     "/api/search/user/full/",
		query:    q,
		listKey:  "user_list",
		pageSize: 10,
	}, count)
}

// Trending returns up to count videos from the For You feed.
func (c *Client) Trending(ctx context.Context, count int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("from_page", "fyp")
	return c.collect(ctx, listRequest{
		endpoint: "trending",
		path:     "/api/recommend/item_list/",
		query:    q,
		listKey:  "itemList",
		pageSize: 30,
	}, count)
}

// Hashtag returns a hashtag's details and up to count of its videos.
func (c *Client) Hashtag(ctx context.Context, tag string, count int) (*Hashtag, error) {
	q := url.Values{}
	q.Set("challengeName", tag)

	var (
		info        json.RawMessage
		challengeID string
	)
	err := c.getJSON(ctx, "challenge_detail", "/api/challenge/detail/", q, func(m map[string]json.RawMessage) error {
		raw, ok := m["challengeInfo"]
		if !ok || isNull(raw) {
			return ErrEmptyResponse
		}
		var ci struct {
			Challenge struct {
				ID string `json:"id"`
			} `json:"challenge"`
		}
		if err := json.Unmarshal(raw, &ci); err != nil {
			return fmt.Errorf("%w: challengeInfo: %v", ErrInvalidJSON, err)
		}
		if ci.Challenge.ID == "" {
			return ErrEmptyResponse
		}
		info, challengeID = raw, ci.Challenge.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	vq := url.Values{}
	vq.Set("challengeID", challengeID)
	videos, err := c.collect(ctx, listRequest{
		endpoint: "challenge_items",
		path:     "/api/challenge/item_list/",
		query:    vq,
		listKey:  "itemList",
		pageSize: 30,
	}, count)
	if err != nil {
		return nil, err
	}
	return &Hashtag{Info: info, Videos: videos}, nil
}

// SoundVideos returns up to count videos using the sound soundID.
func (c *Client) SoundVideos(ctx context.Context, soundID string, count int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("musicID", soundID)
	return c.collect(ctx, listRequest{
		endpoint: "music_items",
		path:     "/api/music/item_list/",
		query:    q,
		listKey:  "itemList",
		pageSize: 30,
	}, count)
}

// Comments returns up to count top-level comments on a video.
func (c *Client) Comments(ctx context.Context, videoID string, count int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("aweme_id", videoID)
	return c.collect(ctx, listRequest{
		endpoint: "comment_list",
		path:     "/api/comment/list/",
		query:    q,
		listKey:  "comments",
		pageSize: 20,
	}, count)
}
