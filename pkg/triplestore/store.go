// Package triplestore implements a small RDF triple store on top of BadgerDB.
//
// Triples are written under three indices (SPO, OPS and PSO) so any pattern
// with at least one bound position is answered by a prefix scan. The store
// has set semantics: adding a triple that is already present is a no-op.
//
// Example usage:
//
//	s, err := triplestore.Open(triplestore.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.Add(triplestore.NewTriple(triplestore.IRI("http://x/a"), triplestore.IRI(vocab.RDFType), triplestore.IRI(vocab.ListItem)))
//
//	for t, err := range s.Scan(triplestore.IRI("http://x/a"), triplestore.Term{}, triplestore.Term{}) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(t)
//	}
package triplestore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// Store is a BadgerDB backed triple store.
type Store struct {
	db     *badger.DB
	config *Config

	// mu serializes writers.
	mu sync.Mutex

	// numFacts tracks the number of distinct triples.
	numFacts atomic.Uint64
}

// Open creates a Store with the given configuration.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := openBadgerDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	s := &Store{db: db, config: cfg}
	if err := s.loadStats(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	slog.Debug("triple store opened", "inMemory", cfg.InMemory, "dataDir", cfg.DataDir, "count", s.numFacts.Load())
	return s, nil
}

// Close persists the triple counter and closes the database.
func (s *Store) Close() error {
	if err := s.saveStats(); err != nil {
		slog.Warn("failed to persist triple count", "error", err)
	}
	return s.db.Close()
}

// loadStats reads the counter from disk into RAM.
func (s *Store) loadStats() error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(KeyFactCount)
		if errors.Is(err, badger.ErrKeyNotFound) {
			s.numFacts.Store(0)
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) >= 8 {
				s.numFacts.Store(binary.BigEndian.Uint64(val))
			}
			return nil
		})
	})
}

// saveStats writes the RAM counter to disk.
func (s *Store) saveStats() error {
	if s.config.ReadOnly || s.config.InMemory {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, s.numFacts.Load())
		return txn.Set(KeyFactCount, buf)
	})
}

// Count returns the number of distinct triples in the store.
func (s *Store) Count() uint64 {
	return s.numFacts.Load()
}

// Add inserts a single triple and reports whether it was new.
func (s *Store) Add(t Triple) (bool, error) {
	n, err := s.AddBatch([]Triple{t})
	return n == 1, err
}

// AddBatch inserts triples in a single transaction: either every triple is
// written or none is. It returns the number of triples that were not already
// present.
func (s *Store) AddBatch(triples []Triple) (int, error) {
	if len(triples) == 0 {
		return 0, nil
	}
	for i, t := range triples {
		if !t.IsValid() {
			return 0, fmt.Errorf("triple %d %s: %w", i, t, ErrInvalidTriple)
		}
	}
	if s.config.ReadOnly {
		return 0, ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		added = 0
		pending := make(map[string]struct{}, len(triples))
		for _, t := range triples {
			spo := encodeKey(SPOPrefix, t)
			if _, dup := pending[string(spo)]; dup {
				continue
			}
			_, err := txn.Get(spo)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			pending[string(spo)] = struct{}{}
			for _, key := range [][]byte{spo, encodeKey(OPSPrefix, t), encodeKey(PSOPrefix, t)} {
				if err := txn.Set(key, nil); err != nil {
					return err
				}
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write batch: %w", err)
	}
	s.numFacts.Add(uint64(added))
	return added, nil
}

// Has reports whether t is in the store.
func (s *Store) Has(t Triple) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(encodeKey(SPOPrefix, t))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Triples returns every triple in SPO order.
func (s *Store) Triples() ([]Triple, error) {
	out := make([]Triple, 0, s.Count())
	for t, err := range s.Scan(Term{}, Term{}, Term{}) {
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
