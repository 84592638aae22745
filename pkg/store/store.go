// Package store persists the schedule dataset. The local badger cache
// is authoritative once populated; a remote read-only document serves
// as the one-shot fallback when the cache is empty. Loads hand out
// fresh working copies so a dispatcher invocation can mutate freely
// and write back atomically.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/jellydator/ttlcache/v3"

	"github.com/kotoba-labs/shiftvoice/internal/log"
	"github.com/kotoba-labs/shiftvoice/pkg/schedule"
)

// ErrDatasetUnavailable is returned when neither the cache nor the
// remote document can produce a dataset.
var ErrDatasetUnavailable = errors.New("store: dataset unavailable")

// Source identifies where a loaded dataset came from. It is echoed in
// tool-call responses so the agent can tell cache hits from remote
// fetches.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

var datasetKey = []byte("dataset")

// Store is the schedule dataset persistence contract.
type Store interface {
	// Load returns a fresh working copy of the dataset: the cache when
	// populated, otherwise one remote fetch. A remote load does not
	// populate the cache; only Persist writes it.
	Load(ctx context.Context) (*schedule.Dataset, Source, error)

	// Persist serializes the dataset and replaces the cached value.
	// Must complete before any response for a mutating call is sent.
	Persist(ctx context.Context, d *schedule.Dataset) error

	// Export writes a snapshot file for external backup and returns
	// its path.
	Export(d *schedule.Dataset) (string, error)

	Close() error
}

// Config holds the knobs for a badger-backed store.
type Config struct {
	// Dir is the badger database directory.
	Dir string

	// RemoteURL is the canonical dataset document fetched on cache miss.
	RemoteURL string

	// ExportDir receives snapshot files. Defaults to Dir when empty.
	ExportDir string

	// HotTTL bounds the in-memory copy of the serialized dataset.
	HotTTL time.Duration

	Logger *slog.Logger
}

// BadgerStore implements Store on a badger database with a ttlcache
// front for the serialized dataset, so hot batches skip disk reads.
type BadgerStore struct {
	cfg Config
	db  *badger.DB
	hot *ttlcache.Cache[string, []byte]
	log *slog.Logger
}

// Open opens or creates the badger database at cfg.Dir.
func Open(cfg Config) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("store: directory is required")
	}
	if cfg.HotTTL <= 0 {
		cfg.HotTTL = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Component("store")
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger at %s: %w", cfg.Dir, err)
	}

	hot := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](cfg.HotTTL),
	)
	go hot.Start()

	return &BadgerStore{cfg: cfg, db: db, hot: hot, log: logger}, nil
}

// Load implements Store.
func (s *BadgerStore) Load(ctx context.Context) (*schedule.Dataset, Source, error) {
	if raw := s.hotGet(); raw != nil {
		d, err := decode(raw)
		if err == nil {
			return d, SourceCache, nil
		}
		// A corrupt hot copy falls through to badger.
		s.hot.Delete(string(datasetKey))
	}

	raw, err := s.cacheGet()
	switch {
	case err == nil:
		s.hot.Set(string(datasetKey), raw, ttlcache.DefaultTTL)
		d, derr := decode(raw)
		if derr != nil {
			return nil, "", derr
		}
		return d, SourceCache, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		d, ferr := s.fetchRemote(ctx)
		if ferr != nil {
			return nil, "", ferr
		}
		return d, SourceRemote, nil
	default:
		return nil, "", fmt.Errorf("store: read cache: %w", err)
	}
}

// Persist implements Store.
func (s *BadgerStore) Persist(_ context.Context, d *schedule.Dataset) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: encode dataset: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(datasetKey, raw)
	})
	if err != nil {
		return fmt.Errorf("store: write cache: %w", err)
	}
	s.hot.Set(string(datasetKey), raw, ttlcache.DefaultTTL)
	s.log.Debug("dataset persisted", "bytes", len(raw), "users", len(d.Users))
	return nil
}

// Close stops the hot cache and closes the database.
func (s *BadgerStore) Close() error {
	s.hot.Stop()
	return s.db.Close()
}

func (s *BadgerStore) hotGet() []byte {
	item := s.hot.Get(string(datasetKey))
	if item == nil {
		return nil
	}
	return item.Value()
}

func (s *BadgerStore) cacheGet() ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(datasetKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	return raw, err
}

func decode(raw []byte) (*schedule.Dataset, error) {
	var d schedule.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: parse cached dataset: %v", ErrDatasetUnavailable, err)
	}
	return &d, nil
}
