//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/OsuBridge/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "osubridge.sqlite3"
const errDBClientNil = "db client is nil"

var ErrNotFound = errors.New("beatmap not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Entry struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	Checksum       string `gorm:"type:char(32);uniqueIndex:idx_entry_checksum"`
	Path           string
	Title          string `gorm:"index:idx_entry_meta,priority:2"`
	Artist         string `gorm:"index:idx_entry_meta,priority:1"`
	Creator        string `gorm:"index:idx_entry_creator"`
	DifficultyName string
	Mode           string
	Version        uint32
	AudioFilename  string
	AudioLeadIn    uint32
	BeatmapID      int32 `gorm:"index:idx_entry_beatmap_id"`
	BeatmapSetID   int32 `gorm:"index:idx_entry_set_id"`
	HitObjects     int
	LengthMs       int32
	AudioMs        int
	Source         string `gorm:"type:text"`
	Tags           []Tag  `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
}

type Tag struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	EntryID string `gorm:"type:varchar(36);uniqueIndex:idx_tag_entry_name,priority:1"`
	Name    string `gorm:"uniqueIndex:idx_tag_entry_name,priority:2;index:idx_tag_name"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("OSUBRIDGE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY under
	// concurrent imports.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Entry{}, &Tag{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InsertEntry stores e under a fresh UUID unless an entry with the same
// checksum exists, in which case the existing ID is returned and created is
// false.
func (c *DBClient) InsertEntry(e *Entry, tags []string) (id string, created bool, err error) {
	if c == nil || c.DB == nil {
		return "", false, errors.New(errDBClientNil)
	}

	var existing Entry
	err = c.DB.Select("id").Where("checksum = ?", e.Checksum).First(&existing).Error
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("querying existing entry: %w", err)
	}

	e.ID = utils.GenerateUUID()
	e.Tags = nil
	for _, name := range normalizeTags(tags) {
		e.Tags = append(e.Tags, Tag{EntryID: e.ID, Name: name})
	}

	err = c.DB.Create(e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			if fetchErr := c.DB.Select("id").Where("checksum = ?", e.Checksum).First(&existing).Error; fetchErr != nil {
				return "", false, fmt.Errorf("fetching entry after constraint violation: %w", fetchErr)
			}
			return existing.ID, false, nil
		}
		return "", false, fmt.Errorf("creating entry: %w", err)
	}
	return e.ID, true, nil
}

func (c *DBClient) GetEntry(id string) (*Entry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var e Entry
	err := c.DB.Omit("source").Preload("Tags").Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return &e, nil
}

// GetSource returns the stored .osu text of an entry.
func (c *DBClient) GetSource(id string) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	var e Entry
	err := c.DB.Select("id", "source").Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("querying entry source: %w", err)
	}
	return e.Source, nil
}

func (c *DBClient) ListEntries() ([]Entry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Entry
	if err := c.DB.Omit("source").Preload("Tags").Order("artist, title, difficulty_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return rows, nil
}

func (c *DBClient) FindByTag(tag string) ([]Entry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	sub := c.DB.Model(&Tag{}).Select("entry_id").Where("name = ?", strings.ToLower(tag))
	var rows []Entry
	err := c.DB.Omit("source").Preload("Tags").
		Where("id IN (?)", sub).
		Order("artist, title, difficulty_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying entries by tag: %w", err)
	}
	return rows, nil
}

// AddTags attaches tags to an entry, ignoring ones it already has.
func (c *DBClient) AddTags(id string, tags []string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Entry{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		for _, name := range normalizeTags(tags) {
			t := Tag{EntryID: id, Name: name}
			if err := tx.Where(t).FirstOrCreate(&t).Error; err != nil {
				return fmt.Errorf("adding tag %q: %w", name, err)
			}
		}
		return nil
	})
}

func (c *DBClient) DeleteEntry(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&Tag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Entry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}

func (c *DBClient) CountEntries() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&Entry{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
