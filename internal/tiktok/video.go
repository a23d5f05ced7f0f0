package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var videoIDPattern = regexp.MustCompile(`/(?:video|photo)/(\d+)`)

// Video fetches a video page and returns the embedded item struct. Short
// links are followed as long as every hop stays on a TikTok host.
func (c *Client) Video(ctx context.Context, rawURL string) (json.RawMessage, error) {
	u, err := c.validateVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	var item json.RawMessage
	err = c.instrument(ctx, "video_page", func(ctx context.Context) error {
		body, final, err := c.fetch(ctx, c.pick(), "video_page", u.String())
		if err != nil {
			return err
		}
		item, err = parseVideoPage(body, VideoID(final.Path))
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// VideoID extracts the numeric id from a canonical video URL path, or "".
func VideoID(path string) string {
	if m := videoIDPattern.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

func (c *Client) validateVideoURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if err := c.allowedURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

// allowedURL accepts http(s) URLs on tiktok.com, its subdomains or the
// configured base host.
func (c *Client) allowedURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host != c.baseHost && host != "tiktok.com" && !strings.HasSuffix(host, ".tiktok.com") {
		return fmt.Errorf("%w: host %q", ErrInvalidURL, host)
	}
	return nil
}

// parseVideoPage reads the hydration data a video page embeds in a script tag.
func parseVideoPage(html []byte, videoID string) (json.RawMessage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: video page: %v", ErrInvalidJSON, err)
	}

	if data := doc.Find("script#__UNIVERSAL_DATA_FOR_REHYDRATION__").First().Text(); data != "" {
		return universalItem(data)
	}
	if data := doc.Find("script#SIGI_STATE").First().Text(); data != "" {
		return sigiItem(data, videoID)
	}
	return nil, ErrEmptyResponse
}

func universalItem(data string) (json.RawMessage, error) {
	var state struct {
		Scope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("%w: rehydration data: %v", ErrInvalidJSON, err)
	}
	raw, ok := state.Scope["webapp.video-detail"]
	if !ok {
		return nil, ErrEmptyResponse
	}

	var detail map[string]json.RawMessage
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("%w: video detail: %v", ErrInvalidJSON, err)
	}
	if err := statusError("video_page", intField(detail, "statusCode"), stringField(detail, "statusMsg")); err != nil {
		return nil, err
	}

	var info struct {
		ItemStruct json.RawMessage `json:"itemStruct"`
	}
	if itemInfo, ok := detail["itemInfo"]; ok {
		if err := json.Unmarshal(itemInfo, &info); err != nil {
			return nil, fmt.Errorf("%w: itemInfo: %v", ErrInvalidJSON, err)
		}
	}
	if isNull(info.ItemStruct) {
		return nil, ErrEmptyResponse
	}
	return info.ItemStruct, nil
}

func sigiItem(data, videoID string) (json.RawMessage, error) {
	var state struct {
		ItemModule map[string]json.RawMessage `json:"ItemModule"`
	}
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("%w: sigi state: %v", ErrInvalidJSON, err)
	}
	if item, ok := state.ItemModule[videoID]; ok && !isNull(item) {
		return item, nil
	}
	// short links carry no id in the path; a page holds a single item
	if videoID == "" && len(state.ItemModule) == 1 {
		for _, item := range state.ItemModule {
			return item, nil
		}
	}
	return nil, ErrEmptyResponse
}
