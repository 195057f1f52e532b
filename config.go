package tagline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the array geometry and block-size constants this driver
// runs against, plus where to reach the RAID server. These describe the
// remote array the server was started with, so they come from the
// environment rather than being chosen here. Defaults are reasonable for
// development and tests; production deployments are expected to override
// them via LoadEnv or the With* options.
type Config struct {
	ServerAddr string

	DiskCount     int
	DiskBlocks    int
	BlockSize     int
	TrackBlocks   int
	MaxTagBlocks  int
	CacheCapacity int
}

// DefaultConfig returns the Config used when no options override it.
func DefaultConfig() Config {
	return Config{
		ServerAddr:    "127.0.0.1:19283",
		DiskCount:     8,
		DiskBlocks:    1 << 16,
		BlockSize:     256,
		TrackBlocks:   1 << 10,
		MaxTagBlocks:  1 << 10,
		CacheCapacity: 1024,
	}
}

// Option customises a Config; apply one by calling it on a *Config.
type Option func(*Config)

// WithServerAddr overrides the RAID server address.
func WithServerAddr(addr string) Option {
	return func(c *Config) { c.ServerAddr = addr }
}

// WithDiskCount overrides the number of physical disks.
func WithDiskCount(n int) Option {
	return func(c *Config) { c.DiskCount = n }
}

// WithDiskBlocks overrides the number of blocks per disk.
func WithDiskBlocks(n int) Option {
	return func(c *Config) { c.DiskBlocks = n }
}

// WithBlockSize overrides the block size in bytes.
func WithBlockSize(n int) Option {
	return func(c *Config) { c.BlockSize = n }
}

// WithTrackBlocks overrides the blocks-per-track value used only to shape
// the block-quantity field of the INIT request.
func WithTrackBlocks(n int) Option {
	return func(c *Config) { c.TrackBlocks = n }
}

// WithMaxTagBlocks overrides the number of blocks a tag can hold; block
// indices within a tag run from 0 to n-1.
func WithMaxTagBlocks(n int) Option {
	return func(c *Config) { c.MaxTagBlocks = n }
}

// WithCacheCapacity overrides the block cache's fixed capacity.
func WithCacheCapacity(n int) Option {
	return func(c *Config) { c.CacheCapacity = n }
}

// env variable names read by LoadEnv.
const (
	envServerAddr    = "TAGLINE_SERVER_ADDR"
	envDiskCount     = "TAGLINE_DISK_COUNT"
	envDiskBlocks    = "TAGLINE_DISK_BLOCKS"
	envBlockSize     = "TAGLINE_BLOCK_SIZE"
	envTrackBlocks   = "TAGLINE_TRACK_BLOCKS"
	envMaxTagBlocks  = "TAGLINE_MAX_TAG_BLOCKS"
	envCacheCapacity = "TAGLINE_CACHE_CAPACITY"
)

// LoadEnv loads a .env file at path (if it exists) with godotenv and
// returns the Config built from DefaultConfig with any of the
// TAGLINE_* environment variables applied on top. A missing file at path
// is not an error: it just means only variables already in the process
// environment (or the defaults) apply.
func LoadEnv(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file %q: %w", path, err)
	}

	cfg := DefaultConfig()

	if v := os.Getenv(envServerAddr); v != "" {
		cfg.ServerAddr = v
	}
	for env, dst := range map[string]*int{
		envDiskCount:     &cfg.DiskCount,
		envDiskBlocks:    &cfg.DiskBlocks,
		envBlockSize:     &cfg.BlockSize,
		envTrackBlocks:   &cfg.TrackBlocks,
		envMaxTagBlocks:  &cfg.MaxTagBlocks,
		envCacheCapacity: &cfg.CacheCapacity,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s=%q: %w", env, v, err)
		}
		*dst = n
	}

	return cfg, nil
}
