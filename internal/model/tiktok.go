package model

import "encoding/json"

// Response envelopes for the TikTok routes. Payloads produced by TikTok are
// carried as raw JSON and forwarded untouched.

type Status struct {
	Message string `json:"message"`
}

type UserInfo struct {
	Username string          `json:"username"`
	UserInfo json.RawMessage `json:"user_info" swaggertype:"object"`
}

type UserPlaylists struct {
	Username  string            `json:"username"`
	Playlists []json.RawMessage `json:"playlists" swaggertype:"array,object"`
}

type SearchResults struct {
	Query   string            `json:"query"`
	Results []json.RawMessage `json:"results" swaggertype:"array,object"`
}

type Trending struct {
	Videos []json.RawMessage `json:"videos" swaggertype:"array,object"`
}

type Hashtag struct {
	Tag    string            `json:"tag"`
	Info   json.RawMessage   `json:"info" swaggertype:"object"`
	Videos []json.RawMessage `json:"videos" swaggertype:"array,object"`
}

type Sound struct {
	SoundID string            `json:"sound_id"`
	Videos  []json.RawMessage `json:"videos" swaggertype:"array,object"`
}

type Video struct {
	URL       string          `json:"url"`
	VideoInfo json.RawMessage `json:"video_info" swaggertype:"object"`
}

type Comments struct {
	VideoID  string            `json:"video_id"`
	Comments []json.RawMessage `json:"comments" swaggertype:"array,object"`
}
