package catalog

import (
	"context"

	"github.com/himanishpuri/OsuBridge/pkg/models"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/audio"
)

type Service interface {
	Import(ctx context.Context, path string) (*models.ImportResult, error)
	ImportData(ctx context.Context, name string, data []byte) (*models.ImportResult, error)
	ImportDir(ctx context.Context, dir string) ([]models.ImportResult, error)
	Get(id string) (*models.Entry, error)
	Load(id string) (*osubridge.Beatmap, error)
	List() ([]models.Entry, error)
	FindByTag(tag string) ([]models.Entry, error)
	Tag(id string, tags ...string) error
	Delete(id string) error
	Close() error
}

type Storage interface {
	InsertEntry(e models.Entry, source string) (id string, created bool, err error)
	GetEntry(id string) (*models.Entry, error)
	GetSource(id string) (string, error)
	ListEntries() ([]models.Entry, error)
	FindByTag(tag string) ([]models.Entry, error)
	AddTags(id string, tags []string) error
	DeleteEntry(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// AudioProbe reads the format of a beatmap's audio file.
type AudioProbe func(ctx context.Context, path string) (*audio.Info, error)
