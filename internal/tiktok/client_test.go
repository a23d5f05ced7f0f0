package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		MSToken:  "test-token",
		Browser:  "chromium",
		Headless: true,
		BaseURL:  srv.URL,
	}, opts...)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestNew(t *testing.T) {
	t.Run("unsupported browser", func(t *testing.T) {
		_, err := New(context.Background(), Config{Browser: "netscape", MSToken: "x"})
		assert.ErrorIs(t, err, ErrUnsupportedBrowser)
	})

	t.Run("creates requested sessions", func(t *testing.T) {
		c, err := New(context.Background(), Config{Browser: "firefox", MSToken: "x", NumSessions: 3})
		require.NoError(t, err)

		sessions := c.Sessions()
		require.Len(t, sessions, 3)
		for i, s := range sessions {
			assert.Equal(t, i, s.ID)
			assert.Len(t, s.DeviceID, 19)
			assert.Contains(t, s.UserAgent, "Firefox/")
			assert.True(t, s.HasToken)
		}
	})

	t.Run("headless chromium user agent", func(t *testing.T) {
		c, err := New(context.Background(), Config{Browser: "chromium", Headless: true, MSToken: "x"})
		require.NoError(t, err)
		assert.Contains(t, c.Sessions()[0].UserAgent, "HeadlessChrome/")

		c, err = New(context.Background(), Config{Browser: "chromium", MSToken: "x"})
		require.NoError(t, err)
		assert.NotContains(t, c.Sessions()[0].UserAgent, "Headless")
	})

	t.Run("bootstraps token from home page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "msToken", Value: "fresh-token"})
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, err := New(context.Background(), Config{Browser: "webkit", BaseURL: srv.URL})
		require.NoError(t, err)
		assert.True(t, c.Sessions()[0].HasToken)
		assert.Equal(t, "fresh-token", c.sessions[0].msToken)
	})

	t.Run("bootstrap without cookie leaves session tokenless", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c, err := New(context.Background(), Config{BaseURL: srv.URL})
		require.NoError(t, err)
		assert.False(t, c.Sessions()[0].HasToken)
	})
}

func TestNewLogsSessions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	_, err := New(context.Background(), Config{Browser: "firefox", MSToken: "x", NumSessions: 2}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("tiktok_sessions_created").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["sessions"])
	assert.Equal(t, "firefox", entries[0].ContextMap()["browser"])
}

func TestUserInfo(t *testing.T) {
	var gotQuery, gotCookie, gotUA string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/detail/", r.URL.Path)
		gotQuery = r.URL.Query().Get("uniqueId")
		gotUA = r.UserAgent()
		if ck, err := r.Cookie("msToken"); err == nil {
			gotCookie = ck.Value
		}
		writeJSON(w, `{"statusCode":0,"userInfo":{"user":{"uniqueId":"scout2015","secUid":"MS4w"}}}`)
	}))

	info, err := c.UserInfo(context.Background(), "scout2015")
	require.NoError(t, err)

	assert.Equal(t, "scout2015", gotQuery)
	assert.Equal(t, "test-token", gotCookie)
	assert.Contains(t, gotUA, "HeadlessChrome")
	assert.JSONEq(t, `{"user":{"uniqueId":"scout2015","secUid":"MS4w"}}`, string(info))
}

func TestUserInfoErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{name: "empty body", status: http.StatusOK, body: "", wantErr: ErrEmptyResponse},
		{name: "whitespace body", status: http.StatusOK, body: " \n", wantErr: ErrEmptyResponse},
		{name: "empty object", status: http.StatusOK, body: "{}", wantErr: ErrEmptyResponse},
		{name: "missing userInfo", status: http.StatusOK, body: `{"statusCode":0}`, wantErr: ErrEmptyResponse},
		{name: "user not found", status: http.StatusOK, body: `{"statusCode":10202,"statusMsg":"user not exist"}`, wantErr: ErrNotFound},
		{name: "invalid json", status: http.StatusOK, body: `<html>`, wantErr: ErrInvalidJSON},
		{
			name:   "api error",
			status: http.StatusOK,
			body:   `{"statusCode":10000,"statusMsg":"captcha"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, 10000, apiErr.StatusCode)
				assert.Equal(t, "captcha", apiErr.Message)
				assert.Equal(t, "user_detail", apiErr.Endpoint)
			},
		},
		{
			name:   "http error",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "unexpected status 502")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			info, err := c.UserInfo(context.Background(), "someone")
			assert.Nil(t, info)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestCollectPagination(t *testing.T) {
	var mu sync.Mutex
	var cursors []string

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comment/list/", r.URL.Path)
		assert.Equal(t, "7300", r.URL.Query().Get("aweme_id"))

		mu.Lock()
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)
		mu.Unlock()

		switch cursor {
		case "0":
			writeJSON(w, `{"status_code":0,"comments":[{"cid":"1"},{"cid":"2"}],"has_more":1,"cursor":2}`)
		case "2":
			writeJSON(w, `{"status_code":0,"comments":[{"cid":"3"},{"cid":"4"}],"has_more":1,"cursor":4}`)
		default:
			writeJSON(w, `{"status_code":0,"comments":[{"cid":"5"}],"has_more":0,"cursor":5}`)
		}
	}))

	t.Run("stops at count", func(t *testing.T) {
		cursors = nil
		items, err := c.Comments(context.Background(), "7300", 3)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.JSONEq(t, `{"cid":"3"}`, string(items[2]))
		assert.Equal(t, []string{"0", "2"}, cursors)
	})

	t.Run("stops when exhausted", func(t *testing.T) {
		cursors = nil
		items, err := c.Comments(context.Background(), "7300", 100)
		require.NoError(t, err)
		assert.Len(t, items, 5)
		assert.Equal(t, []string{"0", "2", "4"}, cursors)
	})
}

func TestCollectNullList(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"statusCode":0,"itemList":null,"hasMore":true}`)
	}))

	items, err := c.Trending(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTrending(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recommend/item_list/", r.URL.Path)
		assert.Equal(t, "fyp", r.URL.Query().Get("from_page"))
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		writeJSON(w, `{"statusCode":0,"itemList":[{"id":"a"},{"id":"b"}],"hasMore":true}`)
	}))

	items, err := c.Trending(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearchUsers(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/user/full/", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("keyword"))
		writeJSON(w, `{"status_code":0,"user_list":[{"user_info":{"unique_id":"gopher"}}],"has_more":0}`)
	}))

	items, err := c.SearchUsers(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, string(items[0]), "gopher")
}

func TestUserPlaylists(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/detail/":
			writeJSON(w, `{"statusCode":0,"userInfo":{"user":{"secUid":"SEC123"}}}`)
		case "/api/user/playlist/":
			assert.Equal(t, "SEC123", r.URL.Query().Get("secUid"))
			writeJSON(w, `{"statusCode":0,"playList":[{"mixId":"1"},{"mixId":"2"}],"hasMore":false,"cursor":"2"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	items, err := c.UserPlaylists(context.Background(), "scout2015", 30)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestUserPlaylistsMissingSecUID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"statusCode":0,"userInfo":{"user":{}}}`)
	}))

	_, err := c.UserPlaylists(context.Background(), "scout2015", 30)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestHashtag(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/challenge/detail/":
			assert.Equal(t, "funny", r.URL.Query().Get("challengeName"))
			writeJSON(w, `{"statusCode":0,"challengeInfo":{"challenge":{"id":"42","title":"funny"}}}`)
		case "/api/challenge/item_list/":
			assert.Equal(t, "42", r.URL.Query().Get("challengeID"))
			writeJSON(w, `{"statusCode":0,"itemList":[{"id":"v1"}],"hasMore":false}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	h, err := c.Hashtag(context.Background(), "funny", 5)
	require.NoError(t, err)
	assert.Contains(t, string(h.Info), `"title":"funny"`)
	assert.Len(t, h.Videos, 1)
}

func TestSoundVideos(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/music/item_list/", r.URL.Path)
		assert.Equal(t, "6900", r.URL.Query().Get("musicID"))
		writeJSON(w, `{"statusCode":0,"itemList":[{"id":"v1"},{"id":"v2"}],"hasMore":false}`)
	}))

	items, err := c.SoundVideos(context.Background(), "6900", 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestComments(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/comment/list/", r.URL.Path)
		assert.Equal(t, "7300", r.URL.Query().Get("aweme_id"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		writeJSON(w, `{"status_code":0,"comments":[{"cid":"c1"},{"cid":"c2"}],"has_more":0,"cursor":2}`)
	}))

	items, err := c.Comments(context.Background(), "7300", 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"cid":"c1"}`, string(items[0]))
}

func TestRoundRobinSessions(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Query().Get("device_id")]++
		mu.Unlock()
		writeJSON(w, `{"statusCode":0,"itemList":[{"id":"a"}],"hasMore":false}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{MSToken: "t", NumSessions: 2, BaseURL: srv.URL})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Trending(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 2)
	for _, s := range c.Sessions() {
		assert.Equal(t, 5, seen[s.DeviceID])
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeJSON(w, `{"statusCode":0,"userInfo":{"user":{}}}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), WithMetrics(m))

	_, err = c.UserInfo(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.UserInfo(context.Background(), "b")
	require.ErrorIs(t, err, ErrEmptyResponse)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "empty")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice on one registry must fail")
}

func TestMetricsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	bodies := []string{
		`{"statusCode":10000,"statusMsg":"captcha"}`,
		`<html>`,
		`{"statusCode":10202,"statusMsg":"user not exist"}`,
		`{"statusCode":0,"itemList":"oops"}`,
	}
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, bodies[calls.Add(1)-1])
	}), WithMetrics(m))

	var apiErr *APIError
	_, err = c.UserInfo(context.Background(), "a")
	require.ErrorAs(t, err, &apiErr)
	_, err = c.UserInfo(context.Background(), "b")
	require.ErrorIs(t, err, ErrInvalidJSON)
	_, err = c.UserInfo(context.Background(), "c")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Trending(context.Background(), 5)
	require.ErrorIs(t, err, ErrInvalidJSON)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "api_error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "invalid_json")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "not_found")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.requests.WithLabelValues("user_detail", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("trending", "invalid_json")))
}

func TestTransportErrorOmitsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(context.Background(), Config{MSToken: "secret-token", Browser: "chromium", BaseURL: base})
	require.NoError(t, err)

	_, err = c.UserInfo(context.Background(), "a")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
	assert.Contains(t, err.Error(), "/api/user/detail/")
}

func TestStringAndIntFields(t *testing.T) {
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":"x","c":true,"d":1712345678000,"e":false}`), &m))

	assert.Equal(t, 1, intField(m, "a"))
	assert.Equal(t, 1, intField(m, "missing", "c"))
	assert.Equal(t, 0, intField(m, "e"))
	assert.Equal(t, 0, intField(m, "missing"))
	assert.Equal(t, "x", stringField(m, "b"))
	assert.Equal(t, "1712345678000", stringField(m, "d"))
	assert.Equal(t, "", stringField(m, "missing"))
}

func TestParamsIncludeSession(t *testing.T) {
	s := &session{id: 0, deviceID: "1234567890123456789", msToken: "tok"}
	p, err := profileFor("webkit", false)
	require.NoError(t, err)
	s.profile = p

	q := s.params()
	assert.Equal(t, "1234567890123456789", q.Get("device_id"))
	assert.Equal(t, "tok", q.Get("msToken"))
	assert.Equal(t, "MacIntel", q.Get("browser_platform"))
	assert.False(t, strings.HasPrefix(q.Get("browser_version"), "Mozilla/"))
	assert.Equal(t, "1988", q.Get("aid"))
}

func ExampleVideoID() {
	fmt.Println(VideoID("/@scout2015/video/6718335390845095173"))
	fmt.Printf("%q\n", VideoID("/ZMabc/"))
	// Output:
	// 6718335390845095173
	// ""
}
