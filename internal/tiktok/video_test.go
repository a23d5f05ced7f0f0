package tiktok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const universalPage = `<!DOCTYPE html><html><head>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"statusCode":0,"statusMsg":"","itemInfo":{"itemStruct":{"id":"6718335390845095173","desc":"hello"}}}}}</script>
</head><body></body></html>`

const sigiPage = `<html><head>
<script id="SIGI_STATE" type="application/json">{"ItemModule":{"6718335390845095173":{"id":"6718335390845095173","desc":"legacy"}}}</script>
</head></html>`

func TestParseVideoPage(t *testing.T) {
	t.Run("universal data", func(t *testing.T) {
		item, err := parseVideoPage([]byte(universalPage), "6718335390845095173")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"6718335390845095173","desc":"hello"}`, string(item))
	})

	t.Run("sigi state", func(t *testing.T) {
		item, err := parseVideoPage([]byte(sigiPage), "6718335390845095173")
		require.NoError(t, err)
		assert.Contains(t, string(item), "legacy")
	})

	t.Run("sigi state single item without id", func(t *testing.T) {
		item, err := parseVideoPage([]byte(sigiPage), "")
		require.NoError(t, err)
		assert.Contains(t, string(item), "legacy")
	})

	t.Run("sigi state wrong id", func(t *testing.T) {
		_, err := parseVideoPage([]byte(sigiPage), "1")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("no hydration data", func(t *testing.T) {
		_, err := parseVideoPage([]byte(`<html><body>verify you are human</body></html>`), "1")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("video removed", func(t *testing.T) {
		page := `<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__">{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"statusCode":10204,"statusMsg":"item doesn't exist"}}}</script>`
		_, err := parseVideoPage([]byte(page), "1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed data", func(t *testing.T) {
		page := `<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__">{not json</script>`
		_, err := parseVideoPage([]byte(page), "1")
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestVideo(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/@scout2015/video/6718335390845095173", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(universalPage))
	}))

	item, err := c.Video(context.Background(), srv.URL+"/@scout2015/video/6718335390845095173")
	require.NoError(t, err)
	assert.Contains(t, string(item), `"desc":"hello"`)
}

func TestVideoRejectsForeignURL(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	for _, u := range []string{
		"http://169.254.169.254/latest/meta-data",
		"ftp://www.tiktok.com/@a/video/1",
		"https://tiktok.com.evil.example/@a/video/1",
		"::not a url",
	} {
		_, err := c.Video(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, u)
	}
}

func TestValidateVideoURLAcceptsTikTokHosts(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	for _, u := range []string{
		"https://www.tiktok.com/@scout2015/video/6718335390845095173",
		"https://vm.tiktok.com/ZMabc/",
		"https://tiktok.com/@a/video/1",
	} {
		_, err := c.validateVideoURL(u)
		assert.NoError(t, err, u)
	}
}

func TestVideoFollowsTikTokRedirect(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ZMabc/" {
			http.Redirect(w, r, "/@scout2015/video/6718335390845095173", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(sigiPage))
	}))

	item, err := c.Video(context.Background(), c.baseURL+"/ZMabc/")
	require.NoError(t, err)
	assert.Contains(t, string(item), "legacy")
}

func TestVideoRejectsForeignRedirect(t *testing.T) {
	var reached atomic.Bool
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached.Store(true)
	}))
	t.Cleanup(foreign.Close)
	// same listener, different host name than the client's base host
	target := strings.Replace(foreign.URL, "127.0.0.1", "localhost", 1) + "/internal"

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}))

	_, err := c.Video(context.Background(), c.baseURL+"/@a/video/1")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.False(t, reached.Load())
}
