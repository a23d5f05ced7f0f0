package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tiktokapi/internal/service"
)

func archiveDisabled(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusNotFound, "ARCHIVE_DISABLED", "fetch archive is disabled", "set ARCHIVE_ENABLED=true to record fetches")
}

func validID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format", "")
}

// ListFetches godoc
// @Summary List archived fetches
// @Tags archive
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Param operation query string false "Only fetches of this operation"
// @Success 200 {object} service.FetchListResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches [get]
func ListFetches(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return archiveDisabled(c)
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit", "")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset", "")
		}

		res, err := archive.List(c.UserContext(), limit, offset, c.Query("operation"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetFetch godoc
// @Summary Get an archived fetch
// @Tags archive
// @Produce json
// @Param id path string true "Fetch id (uuid)"
// @Success 200 {object} model.Fetch
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id} [get]
func GetFetch(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return archiveDisabled(c)
		}
		id, ok := validID(c)
		if !ok {
			return invalidID(c)
		}
		f, err := archive.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// FetchPayloadURL godoc
// @Summary Presigned download URL for a fetch payload
// @Tags archive
// @Produce json
// @Param id path string true "Fetch id (uuid)"
// @Param expiry query int false "URL lifetime in seconds (default 900)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id}/payload [get]
func FetchPayloadURL(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return archiveDisabled(c)
		}
		id, ok := validID(c)
		if !ok {
			return invalidID(c)
		}
		secs, err := strconv.Atoi(c.Query("expiry", "0"))
		if err != nil || secs < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", "invalid expiry", "expiry must be a non-negative number of seconds")
		}

		u, err := archive.PayloadURL(c.UserContext(), id, time.Duration(secs)*time.Second)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// FetchRaw godoc
// @Summary Stream a fetch payload
// @Tags archive
// @Produce json
// @Param id path string true "Fetch id (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id}/raw [get]
func FetchRaw(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return archiveDisabled(c)
		}
		id, ok := validID(c)
		if !ok {
			return invalidID(c)
		}
		rc, info, err := archive.OpenPayload(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEApplicationJSON
		}
		c.Set(fiber.HeaderContentType, ct)
		// The body stream is closed by fasthttp once it has been written.
		if info.Size > 0 {
			return c.SendStream(rc, int(info.Size))
		}
		return c.SendStream(rc)
	}
}

// DeleteFetch godoc
// @Summary Delete an archived fetch
// @Tags archive
// @Param id path string true "Fetch id (uuid)"
// @Success 204 "No Content"
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /fetches/{id} [delete]
func DeleteFetch(archive service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if archive == nil {
			return archiveDisabled(c)
		}
		id, ok := validID(c)
		if !ok {
			return invalidID(c)
		}
		if err := archive.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
