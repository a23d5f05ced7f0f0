package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"tiktokapi/internal/service"
)

// Deps are the collaborators the HTTP layer needs. DB and Archive are nil
// when the fetch archive is disabled.
type Deps struct {
	DB      *sql.DB
	TikTok  service.TikTokService
	Archive service.ArchiveService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Get("/user", User(d.TikTok))
	app.Get("/user/playlists", UserPlaylists(d.TikTok))
	app.Get("/search", Search(d.TikTok))
	app.Get("/trending", Trending(d.TikTok))
	app.Get("/hashtag", Hashtag(d.TikTok))
	app.Get("/sound", Sound(d.TikTok))
	app.Get("/video", Video(d.TikTok))
	app.Get("/comment", Comments(d.TikTok))

	fetches := app.Group("/fetches")
	fetches.Get("/", ListFetches(d.Archive))
	fetches.Get("/:id", GetFetch(d.Archive))
	fetches.Get("/:id/payload", FetchPayloadURL(d.Archive))
	fetches.Get("/:id/raw", FetchRaw(d.Archive))
	fetches.Delete("/:id", DeleteFetch(d.Archive))
}
