package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tiktokapi/internal/model"
	"tiktokapi/internal/service"
)

// missingParam reports a required query parameter that was not supplied.
func missingParam(c *fiber.Ctx, name string) error {
	return writeError(c, fiber.StatusBadRequest, "MISSING_PARAMETER", "missing required parameter", "query parameter '"+name+"' is required")
}

// queryCount parses the optional count parameter. Zero means "use the default".
func queryCount(c *fiber.Ctx) (int, bool) {
	raw := c.Query("count")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func invalidCount(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_COUNT", "invalid count", "count must be an integer")
}

// Root godoc
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} model.Status
// @Router / [get]
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(model.Status{Message: "TikTok API is running"})
	}
}

// User godoc
// @Summary Get user profile
// @Tags tiktok
// @Produce json
// @Param username query string true "TikTok username"
// @Success 200 {object} model.UserInfo
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /user [get]
func User(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Query("username")
		if username == "" {
			return missingParam(c, "username")
		}
		res, err := svc.User(c.UserContext(), username)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UserPlaylists godoc
// @Summary List a user's playlists
// @Tags tiktok
// @Produce json
// @Param username query string true "TikTok username"
// @Param count query int false "Number of playlists (default 30, max 100)"
// @Success 200 {object} model.UserPlaylists
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /user/playlists [get]
func UserPlaylists(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Query("username")
		if username == "" {
			return missingParam(c, "username")
		}
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.UserPlaylists(c.UserContext(), username, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Search godoc
// @Summary Search users
// @Tags tiktok
// @Produce json
// @Param query query string true "Search keyword"
// @Param count query int false "Number of results (default 30, max 100)"
// @Success 200 {object} model.SearchResults
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /search [get]
func Search(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" {
			return missingParam(c, "query")
		}
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.Search(c.UserContext(), query, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Trending godoc
// @Summary Trending videos
// @Tags tiktok
// @Produce json
// @Param count query int false "Number of videos (default 30, max 100)"
// @Success 200 {object} model.Trending
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /trending [get]
func Trending(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.Trending(c.UserContext(), count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Hashtag godoc
// @Summary Hashtag info and videos
// @Tags tiktok
// @Produce json
// @Param tag query string true "Hashtag without the leading #"
// @Param count query int false "Number of videos (default 30, max 100)"
// @Success 200 {object} model.Hashtag
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /hashtag [get]
func Hashtag(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tag := c.Query("tag")
		if tag == "" {
			return missingParam(c, "tag")
		}
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.Hashtag(c.UserContext(), tag, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Sound godoc
// @Summary Videos using a sound
// @Tags tiktok
// @Produce json
// @Param sound_id query string true "Sound (music) id"
// @Param count query int false "Number of videos (default 30, max 100)"
// @Success 200 {object} model.Sound
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /sound [get]
func Sound(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		soundID := c.Query("sound_id")
		if soundID == "" {
			return missingParam(c, "sound_id")
		}
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.Sound(c.UserContext(), soundID, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Video godoc
// @Summary Video details
// @Tags tiktok
// @Produce json
// @Param url query string true "Video URL on tiktok.com"
// @Success 200 {object} model.Video
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /video [get]
func Video(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url := c.Query("url")
		if url == "" {
			return missingParam(c, "url")
		}
		res, err := svc.Video(c.UserContext(), url)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Comments godoc
// @Summary Comments on a video
// @Tags tiktok
// @Produce json
// @Param video_id query string true "Video id"
// @Param count query int false "Number of comments (default 30, max 100)"
// @Success 200 {object} model.Comments
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /comment [get]
func Comments(svc service.TikTokService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		videoID := c.Query("video_id")
		if videoID == "" {
			return missingParam(c, "video_id")
		}
		count, ok := queryCount(c)
		if !ok {
			return invalidCount(c)
		}
		res, err := svc.Comments(c.UserContext(), videoID, count)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
