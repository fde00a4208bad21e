// Package badgerstore is an embedded key/value implementation of the document
// store, backed by BadgerDB. It serves the same contract as repo.Store and
// reports missing keys as repo.ErrNotFound.
//
// Key layout (ids may contain any byte except NUL):
//
//	d\x00{id}            raw document
//	i\x00{id}            serialized search index
//	s\x00{id}\x00{ctx}   selection, JSON
package badgerstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hymnal-backend/internal/repo"
	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

const sep = 0x00

var (
	docPrefix = []byte{'d', sep}
	idxPrefix = []byte{'i', sep}
	selPrefix = []byte{'s', sep}
)

// ErrBadID is returned for ids that cannot be encoded into a key.
var ErrBadID = errors.New("badgerstore: id must be non-empty and contain no NUL byte")

// Store persists documents, indexes and selections in BadgerDB.
type Store struct {
	db *badger.DB
}

// zerologAdapter routes badger's internal logging through zerolog.
type zerologAdapter struct {
	l zerolog.Logger
}

var _ badger.Logger = zerologAdapter{}

func (a zerologAdapter) Errorf(msg string, args ...any)   { a.l.Error().Msgf(msg, args...) }
func (a zerologAdapter) Warningf(msg string, args ...any) { a.l.Warn().Msgf(msg, args...) }
func (a zerologAdapter) Infof(msg string, args ...any)    { a.l.Debug().Msgf(msg, args...) }
func (a zerologAdapter) Debugf(msg string, args ...any)   { a.l.Trace().Msgf(msg, args...) }

// Open opens (or creates) a store in dir. An empty dir opens an in-memory
// store, which is what tests use.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = zerologAdapter{l: log.With().Str("component", "badger").Logger()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func key(prefix []byte, parts ...string) ([]byte, error) {
	k := append([]byte(nil), prefix...)
	for i, p := range parts {
		if p == "" || bytes.IndexByte([]byte(p), sep) >= 0 {
			return nil, ErrBadID
		}
		if i > 0 {
			k = append(k, sep)
		}
		k = append(k, p...)
	}
	return k, nil
}

func (s *Store) get(k []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return repo.ErrNotFound
			}
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *Store) set(k, v []byte) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(k, v)
	})
}

// Get returns the raw source of document id.
func (s *Store) Get(_ context.Context, id string) ([]byte, error) {
	k, err := key(docPrefix, id)
	if err != nil {
		return nil, err
	}
	return s.get(k)
}

// Put stores raw under id.
func (s *Store) Put(_ context.Context, id string, raw []byte) error {
	k, err := key(docPrefix, id)
	if err != nil {
		return err
	}
	return s.set(k, raw)
}

// Delete removes document id with its index and selections. It returns
// repo.ErrNotFound when the document did not exist.
func (s *Store) Delete(_ context.Context, id string) error {
	dk, err := key(docPrefix, id)
	if err != nil {
		return err
	}
	ik, _ := key(idxPrefix, id)
	sp, _ := key(selPrefix, id)
	sp = append(sp, sep)

	return s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(dk); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return repo.ErrNotFound
			}
			return err
		}
		var doomed [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = sp
		it := tx.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			doomed = append(doomed, it.Item().KeyCopy(nil))
		}
		it.Close()

		doomed = append(doomed, ik, dk)
		for _, k := range doomed {
			if err := tx.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetIndex returns the serialized index of document id.
func (s *Store) GetIndex(_ context.Context, id string) ([]byte, error) {
	k, err := key(idxPrefix, id)
	if err != nil {
		return nil, err
	}
	return s.get(k)
}

// PutIndex stores the serialized index of document id.
func (s *Store) PutIndex(_ context.Context, id string, blob []byte) error {
	k, err := key(idxPrefix, id)
	if err != nil {
		return err
	}
	return s.set(k, blob)
}

// List returns all stored document ids in ascending byte order.
func (s *Store) List(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = docPrefix
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(docPrefix):]))
		}
		return nil
	})
	return ids, err
}

// GetSelection loads the selection of (docID, scope).
func (s *Store) GetSelection(_ context.Context, docID, scope string) (selection.Selection, error) {
	k, err := key(selPrefix, docID, scope)
	if err != nil {
		return selection.Selection{}, err
	}
	raw, err := s.get(k)
	if err != nil {
		return selection.Selection{}, err
	}
	var sel selection.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return selection.Selection{}, err
	}
	return sel, nil
}

// PutSelection stores the selection of (docID, scope).
func (s *Store) PutSelection(_ context.Context, docID, scope string, sel selection.Selection) error {
	k, err := key(selPrefix, docID, scope)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.set(k, raw)
}
