package tiktok

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const chromeVersion = "126.0.0.0"

type browserProfile struct {
	userAgent string
	platform  string
	os        string
}

func profileFor(browser string, headless bool) (browserProfile, error) {
	switch browser {
	case "", "chromium", "chrome":
		product := "Chrome/"
		if headless {
			product = "HeadlessChrome/"
		}
		return browserProfile{
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " + product + chromeVersion + " Safari/537.36",
			platform:  "Win32",
			os:        "windows",
		}, nil
	case "firefox":
		return browserProfile{
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
			platform:  "Win32",
			os:        "windows",
		}, nil
	case "webkit":
		return browserProfile{
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
			platform:  "MacIntel",
			os:        "mac",
		}, nil
	default:
		return browserProfile{}, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, browser)
	}
}

// session is one scraping identity. It is never modified after bootstrap.
type session struct {
	id       int
	deviceID string
	msToken  string
	profile  browserProfile
}

// Session describes a bootstrapped session without exposing its token.
type Session struct {
	ID        int    `json:"id"`
	DeviceID  string `json:"device_id"`
	UserAgent string `json:"user_agent"`
	HasToken  bool   `json:"has_token"`
}

func newDeviceID() string {
	return strconv.FormatUint(1e18+uint64(rand.Int63n(9e18)), 10)
}

// params returns the query parameters TikTok's web client sends on every call.
func (s *session) params() url.Values {
	q := url.Values{}
	q.Set("aid", "1988")
	q.Set("app_language", "en")
	q.Set("app_name", "tiktok_web")
	q.Set("browser_language", "en-US")
	q.Set("browser_name", "Mozilla")
	q.Set("browser_online", "true")
	q.Set("browser_platform", s.profile.platform)
	q.Set("browser_version", strings.TrimPrefix(s.profile.userAgent, "Mozilla/"))
	q.Set("channel", "tiktok_web")
	q.Set("cookie_enabled", "true")
	q.Set("device_id", s.deviceID)
	q.Set("device_platform", "web_pc")
	q.Set("focus_state", "true")
	q.Set("from_page", "user")
	q.Set("history_len", "2")
	q.Set("is_fullscreen", "false")
	q.Set("is_page_visible", "true")
	q.Set("language", "en")
	q.Set("os", s.profile.os)
	q.Set("region", "US")
	q.Set("screen_height", "1080")
	q.Set("screen_width", "1920")
	q.Set("webcast_language", "en")
	if s.msToken != "" {
		q.Set("msToken", s.msToken)
	}
	return q
}

func (s *session) decorate(req *http.Request, referer string) {
	req.Header.Set("User-Agent", s.profile.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", referer)
	if s.msToken != "" {
		req.AddCookie(&http.Cookie{Name: "msToken", Value: s.msToken})
	}
}

// bootstrapToken visits the home page once and adopts the msToken cookie
// TikTok hands to anonymous visitors. Failure leaves the session tokenless.
func (c *Client) bootstrapToken(ctx context.Context, s *session) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		c.log.Warn("session_bootstrap_failed", zap.Int("session", s.id), zap.Error(err))
		return
	}
	s.decorate(req, c.baseURL+"/")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("session_bootstrap_failed", zap.Int("session", s.id), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == "msToken" && ck.Value != "" {
			s.msToken = ck.Value
			return
		}
	}
	c.log.Warn("session_bootstrap_no_token", zap.Int("session", s.id), zap.Int("status", resp.StatusCode))
}
