package catalog

import (
	"github.com/himanishpuri/OsuBridge/pkg/models"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/catalog/storage"
)

// ErrNotFound is returned for IDs the catalog does not hold.
var ErrNotFound = storage.ErrNotFound

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (or creates) a catalog database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) InsertEntry(e models.Entry, source string) (string, bool, error) {
	row := &storage.Entry{
		Checksum:       e.Checksum,
		Path:           e.Path,
		Title:          e.Title,
		Artist:         e.Artist,
		Creator:        e.Creator,
		DifficultyName: e.DifficultyName,
		Mode:           e.Mode,
		Version:        e.Version,
		AudioFilename:  e.AudioFilename,
		AudioLeadIn:    e.AudioLeadIn,
		BeatmapID:      e.BeatmapID,
		BeatmapSetID:   e.BeatmapSetID,
		HitObjects:     e.HitObjects,
		LengthMs:       e.LengthMs,
		AudioMs:        e.AudioMs,
		Source:         source,
	}
	return s.db.InsertEntry(row, e.Tags)
}

func (s *storageAdapter) GetEntry(id string) (*models.Entry, error) {
	row, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	e := toEntry(*row)
	return &e, nil
}

func (s *storageAdapter) GetSource(id string) (string, error) {
	return s.db.GetSource(id)
}

func (s *storageAdapter) ListEntries() ([]models.Entry, error) {
	rows, err := s.db.ListEntries()
	if err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

func (s *storageAdapter) FindByTag(tag string) ([]models.Entry, error) {
	rows, err := s.db.FindByTag(tag)
	if err != nil {
		return nil, err
	}
	return toEntries(rows), nil
}

func (s *storageAdapter) AddTags(id string, tags []string) error {
	return s.db.AddTags(id, tags)
}

func (s *storageAdapter) DeleteEntry(id string) error {
	return s.db.DeleteEntry(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toEntries(rows []storage.Entry) []models.Entry {
	out := make([]models.Entry, len(rows))
	for i, r := range rows {
		out[i] = toEntry(r)
	}
	return out
}

func toEntry(r storage.Entry) models.Entry {
	tags := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = t.Name
	}
	return models.Entry{
		ID:             r.ID,
		Checksum:       r.Checksum,
		Path:           r.Path,
		Title:          r.Title,
		Artist:         r.Artist,
		Creator:        r.Creator,
		DifficultyName: r.DifficultyName,
		Mode:           r.Mode,
		Version:        r.Version,
		AudioFilename:  r.AudioFilename,
		AudioLeadIn:    r.AudioLeadIn,
		BeatmapID:      r.BeatmapID,
		BeatmapSetID:   r.BeatmapSetID,
		HitObjects:     r.HitObjects,
		LengthMs:       r.LengthMs,
		AudioMs:        r.AudioMs,
		Tags:           tags,
		CreatedAt:      r.CreatedAt,
	}
}
