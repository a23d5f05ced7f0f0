package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// maxPages bounds a single collect call regardless of what TikTok reports.
const maxPages = 50

type listRequest struct {
	endpoint string
	path     string
	query    url.Values
	listKey  string
	pageSize int
}

type page struct {
	items   []json.RawMessage
	hasMore bool
	cursor  string
}

func readPage(m map[string]json.RawMessage, listKey string) (page, error) {
	var p page
	if raw, ok := m[listKey]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &p.items); err != nil {
			return page{}, fmt.Errorf("%w: %s: %v", ErrInvalidJSON, listKey, err)
		}
	}
	p.hasMore = intField(m, "hasMore", "has_more") != 0
	p.cursor = stringField(m, "cursor")
	return p, nil
}

// collect walks cursor pages until count items are gathered or TikTok
// reports there is nothing left.
func (c *Client) collect(ctx context.Context, lr listRequest, count int) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, 0, count)
	cursor := "0"

	for pages := 0; len(items) < count && pages < maxPages; pages++ {
		q := url.Values{}
		for k, v := range lr.query {
			q[k] = v
		}
		q.Set("count", strconv.Itoa(min(count-len(items), lr.pageSize)))
		q.Set("cursor", cursor)

		var p page
		err := c.getJSON(ctx, lr.endpoint, lr.path, q, func(m map[string]json.RawMessage) (err error) {
			p, err = readPage(m, lr.listKey)
			return err
		})
		if err != nil {
			return nil, err
		}

		items = append(items, p.items...)
		if !p.hasMore || len(p.items) == 0 {
			break
		}
		if p.cursor != "" {
			cursor = p.cursor
		}
	}

	if len(items) > count {
		items = items[:count]
	}
	return items, nil
}
