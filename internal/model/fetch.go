package model

import "time"

// Fetch records one successful TikTok lookup whose raw payload was archived.
// This is a pure domain model with no database-specific dependencies or tags.
type Fetch struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	LookupKey   string    `json:"lookup_key"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
