package catalog

import (
	"runtime"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge/audio"
)

type Config struct {
	DBPath      string
	Concurrency int
	Logger      Logger
	Storage     Storage
	AudioProbe  AudioProbe
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithConcurrency sets how many files ImportDir parses at once.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Concurrency = n
		}
	}
}

// WithAudioProbe replaces the audio probe; nil turns probing off.
func WithAudioProbe(p AudioProbe) Option {
	return func(c *Config) {
		c.AudioProbe = p
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:      "osubridge.sqlite3",
		Concurrency: runtime.NumCPU(),
		AudioProbe:  audio.Probe,
	}
}
