package api

import "encoding/json"

// The v1 API sends every number as a string; fields are kept as strings so
// nothing is lost to a failed conversion.

type Beatmap struct {
	BeatmapSetID     string `json:"beatmapset_id"`
	BeatmapID        string `json:"beatmap_id"`
	Approved         string `json:"approved"`
	TotalLength      string `json:"total_length"`
	HitLength        string `json:"hit_length"`
	Version          string `json:"version"`
	FileMD5          string `json:"file_md5"`
	DiffSize         string `json:"diff_size"`
	DiffOverall      string `json:"diff_overall"`
	DiffApproach     string `json:"diff_approach"`
	DiffDrain        string `json:"diff_drain"`
	Mode             string `json:"mode"`
	ApprovedDate     string `json:"approved_date"`
	LastUpdate       string `json:"last_update"`
	Artist           string `json:"artist"`
	Title            string `json:"title"`
	Creator          string `json:"creator"`
	CreatorID        string `json:"creator_id"`
	BPM              string `json:"bpm"`
	Source           string `json:"source"`
	Tags             string `json:"tags"`
	FavouriteCount   string `json:"favourite_count"`
	Playcount        string `json:"playcount"`
	Passcount        string `json:"passcount"`
	MaxCombo         string `json:"max_combo"`
	DifficultyRating string `json:"difficultyrating"`
}

type User struct {
	UserID             string `json:"user_id"`
	Username           string `json:"username"`
	JoinDate           string `json:"join_date"`
	Count300           string `json:"count300"`
	Count100           string `json:"count100"`
	Count50            string `json:"count50"`
	Playcount          string `json:"playcount"`
	RankedScore        string `json:"ranked_score"`
	TotalScore         string `json:"total_score"`
	PPRank             string `json:"pp_rank"`
	Level              string `json:"level"`
	PPRaw              string `json:"pp_raw"`
	Accuracy           string `json:"accuracy"`
	CountRankSS        string `json:"count_rank_ss"`
	CountRankS         string `json:"count_rank_s"`
	CountRankA         string `json:"count_rank_a"`
	Country            string `json:"country"`
	PPCountryRank      string `json:"pp_country_rank"`
	TotalSecondsPlayed string `json:"total_seconds_played"`
}

type Score struct {
	ScoreID         string `json:"score_id"`
	BeatmapID       string `json:"beatmap_id"`
	Score           string `json:"score"`
	Username        string `json:"username"`
	UserID          string `json:"user_id"`
	MaxCombo        string `json:"maxcombo"`
	Count50         string `json:"count50"`
	Count100        string `json:"count100"`
	Count300        string `json:"count300"`
	CountMiss       string `json:"countmiss"`
	CountKatu       string `json:"countkatu"`
	CountGeki       string `json:"countgeki"`
	Perfect         string `json:"perfect"`
	EnabledMods     string `json:"enabled_mods"`
	Date            string `json:"date"`
	Rank            string `json:"rank"`
	PP              string `json:"pp"`
	ReplayAvailable string `json:"replay_available"`
}

type Match struct {
	Match json.RawMessage   `json:"match"`
	Games []json.RawMessage `json:"games"`
}

type Replay struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Query structs are encoded with go-querystring. Pointer fields distinguish
// "unset" from zero, which is a valid game mode.

type BeatmapsQuery struct {
	Since     string `url:"since,omitempty"` // MySQL date, UTC
	SetID     int    `url:"s,omitempty"`
	BeatmapID int    `url:"b,omitempty"`
	User      string `url:"u,omitempty"`
	Type      string `url:"type,omitempty"` // "string" or "id"
	Mode      *int   `url:"m,omitempty"`
	Converted bool   `url:"a,int,omitempty"`
	Hash      string `url:"h,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Mods      int    `url:"mods,omitempty"`
}

type UserQuery struct {
	User      string `url:"u"`
	Mode      *int   `url:"m,omitempty"`
	Type      string `url:"type,omitempty"`
	EventDays int    `url:"event_days,omitempty"`
}

type ScoresQuery struct {
	BeatmapID int    `url:"b"`
	User      string `url:"u,omitempty"`
	Mode      *int   `url:"m,omitempty"`
	Mods      *int   `url:"mods,omitempty"`
	Type      string `url:"type,omitempty"`
	Limit     int    `url:"limit,omitempty"`
}

type UserScoresQuery struct {
	User  string `url:"u"`
	Mode  *int   `url:"m,omitempty"`
	Limit int    `url:"limit,omitempty"`
	Type  string `url:"type,omitempty"`
}

type ReplayQuery struct {
	BeatmapID int    `url:"b,omitempty"`
	User      string `url:"u,omitempty"`
	Mode      *int   `url:"m,omitempty"`
	ScoreID   int    `url:"s,omitempty"`
	Type      string `url:"type,omitempty"`
	Mods      *int   `url:"mods,omitempty"`
}

// Mode returns a pointer for the Mode fields of the query structs.
func Mode(m int) *int { return &m }
