package triplestore

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Config holds the configuration for the BadgerDB backing a Store.
type Config struct {
	// DataDir is the directory where BadgerDB will store its data.
	DataDir string

	// InMemory keeps the whole store in RAM. A registry build holds a few
	// thousand triples, so this is the default.
	InMemory bool

	// Compression enables ZSTD compression for on-disk stores.
	Compression bool

	// SyncWrites enables synchronous writes.
	SyncWrites bool

	// ReadOnly opens an existing on-disk store without write access.
	ReadOnly bool
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("DataDir must be specified when InMemory is false")
	}
	if c.InMemory && c.ReadOnly {
		return fmt.Errorf("ReadOnly requires an on-disk store")
	}
	return nil
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() *Config {
	return &Config{InMemory: true}
}

// DiskConfig returns a configuration persisting under dataDir.
func DiskConfig(dataDir string) *Config {
	return &Config{
		DataDir:     dataDir,
		Compression: true,
		SyncWrites:  true,
	}
}

// buildBadgerOptions converts Config to badger.Options.
func buildBadgerOptions(cfg *Config) badger.Options {
	if cfg.InMemory {
		opts := badger.DefaultOptions("")
		opts.InMemory = true
		opts.Logger = nil
		return opts
	}

	opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger"))
	opts.Logger = nil
	opts.ReadOnly = cfg.ReadOnly
	opts.SyncWrites = cfg.SyncWrites
	opts.BloomFalsePositive = 0.01
	// Registry graphs are tiny; keep value logs small so the build folder stays light.
	opts.ValueLogFileSize = 16 << 20
	opts.NumCompactors = 2
	if cfg.Compression {
		opts.Compression = options.ZSTD
	} else {
		opts.Compression = options.None
	}
	return opts
}

// openBadgerDB opens a BadgerDB instance with the given configuration.
func openBadgerDB(cfg *Config) (*badger.DB, error) {
	return badger.Open(buildBadgerOptions(cfg))
}
