package models

import "time"

// Entry is one beatmap file stored in the catalog.
type Entry struct {
	ID             string    `json:"id"`       // UUID
	Checksum       string    `json:"checksum"` // md5 of the .osu file
	Path           string    `json:"path"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	Creator        string    `json:"creator"`
	DifficultyName string    `json:"difficultyName"`
	Mode           string    `json:"mode"`
	Version        uint32    `json:"version"`
	AudioFilename  string    `json:"audioFilename"`
	AudioLeadIn    uint32    `json:"audioLeadIn"`
	BeatmapID      int32     `json:"beatmapId"`
	BeatmapSetID   int32     `json:"beatmapSetId"`
	HitObjects     int       `json:"hitObjects"`
	LengthMs       int32     `json:"lengthMs"`
	AudioMs        int       `json:"audioMs,omitempty"` // 0 when the audio could not be probed
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ImportResult reports what happened to one file during an import.
type ImportResult struct {
	Path    string `json:"path"`
	ID      string `json:"id,omitempty"`
	Skipped bool   `json:"skipped,omitempty"` // already in the catalog
	Error   string `json:"error,omitempty"`
}
