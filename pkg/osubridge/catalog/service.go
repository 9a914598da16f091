// Package catalog keeps a library of imported beatmaps in sqlite.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/OsuBridge/pkg/logger"
	"github.com/himanishpuri/OsuBridge/pkg/models"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
	"github.com/himanishpuri/OsuBridge/pkg/utils"
)

// catalogService is the default implementation of the Service interface.
type catalogService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &catalogService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Import parses one .osu file and stores it. A file whose checksum is already
// in the catalog is reported as skipped with the existing ID.
func (s *catalogService) Import(ctx context.Context, path string) (*models.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, path, data, true)
}

// ImportData stores a beatmap that has no file on disk, such as an upload.
// name is recorded as the entry's path and no audio is probed.
func (s *catalogService) ImportData(ctx context.Context, name string, data []byte) (*models.ImportResult, error) {
	return s.store(ctx, name, data, false)
}

func (s *catalogService) store(ctx context.Context, path string, data []byte, probe bool) (*models.ImportResult, error) {
	bm, err := osubridge.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	sum := bm.Summary()
	entry := models.Entry{
		Checksum:       utils.MD5Hex(data),
		Path:           path,
		Title:          sum.Title,
		Artist:         sum.Artist,
		Creator:        sum.Creator,
		DifficultyName: sum.DifficultyName,
		Mode:           sum.Mode,
		Version:        sum.Version,
		AudioFilename:  sum.AudioFilename,
		AudioLeadIn:    sum.AudioLeadIn,
		BeatmapID:      sum.BeatmapID,
		BeatmapSetID:   sum.BeatmapSetID,
		HitObjects:     sum.HitObjects,
		LengthMs:       sum.LengthMs,
		Tags:           sum.Tags,
	}
	if probe {
		entry.AudioMs = s.probeAudio(ctx, path, sum.AudioFilename)
	}

	id, created, err := s.storage.InsertEntry(entry, string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", filepath.Base(path), err)
	}
	if created {
		s.log.Infof("Imported %s as %s", sum.DisplayName(), id)
	} else {
		s.log.Debugf("Skipped %s, already stored as %s", filepath.Base(path), id)
	}
	return &models.ImportResult{Path: path, ID: id, Skipped: !created}, nil
}

// probeAudio returns the audio length in ms, or 0 when it cannot be read.
func (s *catalogService) probeAudio(ctx context.Context, osuPath, audioFile string) int {
	if s.config.AudioProbe == nil || audioFile == "" {
		return 0
	}
	p := filepath.Join(filepath.Dir(osuPath), filepath.FromSlash(audioFile))
	info, err := s.config.AudioProbe(ctx, p)
	if err != nil {
		s.log.Debugf("No audio info for %s: %v", p, err)
		return 0
	}
	return int(info.Duration.Milliseconds())
}

// ImportDir imports every .osu file below dir. Failures of single files are
// recorded in their result; the returned error is for the walk itself or
// cancellation.
func (s *catalogService) ImportDir(ctx context.Context, dir string) ([]models.ImportResult, error) {
	paths, err := utils.FindOsuFiles(dir)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Found %d beatmap files in %s", len(paths), dir)

	results := make([]models.ImportResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.Import(ctx, path)
			if err != nil {
				s.log.Warnf("Import failed: %v", err)
				results[i] = models.ImportResult{Path: path, Error: err.Error()}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	imported := 0
	for _, r := range results {
		if r.ID != "" && !r.Skipped {
			imported++
		}
	}
	s.log.Infof("Imported %d/%d beatmaps from %s", imported, len(paths), dir)
	return results, nil
}

func (s *catalogService) Get(id string) (*models.Entry, error) {
	return s.storage.GetEntry(id)
}

// Load returns a fresh handle parsed from the stored file contents.
func (s *catalogService) Load(id string) (*osubridge.Beatmap, error) {
	src, err := s.storage.GetSource(id)
	if err != nil {
		return nil, err
	}
	return osubridge.Parse(src)
}

func (s *catalogService) List() ([]models.Entry, error) {
	return s.storage.ListEntries()
}

func (s *catalogService) FindByTag(tag string) ([]models.Entry, error) {
	return s.storage.FindByTag(tag)
}

func (s *catalogService) Tag(id string, tags ...string) error {
	if len(tags) == 0 {
		return errors.New("no tags given")
	}
	return s.storage.AddTags(id, tags)
}

func (s *catalogService) Delete(id string) error {
	if err := s.storage.DeleteEntry(id); err != nil {
		return err
	}
	s.log.Infof("Deleted beatmap %s", id)
	return nil
}

// Close releases all resources held by the service.
func (s *catalogService) Close() error {
	return s.storage.Close()
}
