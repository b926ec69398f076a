package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketLists = []byte("lists")
)

const dbFileName = "reelkeep.db"

// Store implements domain.Store using BoltDB with an in-memory read cache.
// A Store without a database is memory-only and loses its contents on Close.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache and orders bolt writes with it

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewMemory returns a memory-only Store (no persistence).
func NewMemory() *Store {
	return &Store{cache: make(map[string][]byte)}
}

// Open opens (creating if needed) the BoltDB file for a profile under baseDir.
// Each profile (account or catalog URL) gets its own database so switching
// accounts never mixes saved lists. An empty baseDir yields a memory-only Store.
func Open(baseDir, profile string) (*Store, error) {
	if baseDir == "" {
		return NewMemory(), nil
	}

	dir := baseDir
	if profile != "" {
		dir = filepath.Join(baseDir, hashProfile(profile))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLists)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func hashProfile(profile string) string {
	normalized := strings.TrimRight(strings.ToLower(profile), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Persistent reports whether the Store is backed by a database file
func (s *Store) Persistent() bool {
	return s.db != nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return clone(data), true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	// The bolt read and the cache promotion happen under one lock so a
	// concurrent Set or Remove cannot be overwritten by an older value
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache[key]; ok {
		return clone(data), true, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLists)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	// Promote to memory cache
	s.cache[key] = data
	return clone(data), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	data := clone(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		// Write through before touching the cache so a failed write
		// never leaves the cache ahead of disk
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketLists).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.cache[key] = data
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLists)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
