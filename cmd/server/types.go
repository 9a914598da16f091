package main

import (
	"fmt"

	"github.com/himanishpuri/OsuBridge/pkg/models"
)

const (
	// MaxBeatmapBytes caps request bodies carrying .osu text. Real maps with
	// storyboards stay well below this.
	MaxBeatmapBytes = 8 << 20

	MaxTagsPerRequest = 32
)

// EditRequest is the request body for POST /api/edit
type EditRequest struct {
	// Source is the .osu text to edit (required)
	Source string `json:"source"`

	// Fields maps field names to new values, e.g. {"audioLeadIn": 500}
	Fields map[string]any `json:"fields"`
}

// Validate checks if the request is valid
func (r *EditRequest) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("source is required")
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	return nil
}

// EditResponse is the response for POST /api/edit
type EditResponse struct {
	Source  string         `json:"source"`
	Beatmap map[string]any `json:"beatmap"`
}

// TagRequest is the request body for POST /api/beatmaps/{id}/tags
type TagRequest struct {
	Tags []string `json:"tags"`
}

func (r *TagRequest) Validate() error {
	if len(r.Tags) == 0 {
		return fmt.Errorf("tags cannot be empty")
	}
	if len(r.Tags) > MaxTagsPerRequest {
		return fmt.Errorf("too many tags: %d (maximum: %d)", len(r.Tags), MaxTagsPerRequest)
	}
	return nil
}

// AddBeatmapResponse is the response for POST /api/beatmaps
type AddBeatmapResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Skipped bool   `json:"skipped"`
}

// ListBeatmapsResponse is the response for GET /api/beatmaps
type ListBeatmapsResponse struct {
	Beatmaps []models.Entry `json:"beatmaps"`
	Count    int            `json:"count"`
}

// DeleteBeatmapResponse is the response for DELETE /api/beatmaps/{id}
type DeleteBeatmapResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	BeatmapCount int    `json:"beatmap_count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
