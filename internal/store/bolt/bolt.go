// Package bolt stores conversations in a single bbolt file, one key per
// conversation in one bucket.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
)

var bucketName = []byte("conversations")

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

func init() {
	store.RegisterBackend("bolt", func(_ context.Context, opts store.Options) (store.Backend, error) {
		return Open(opts.Path)
	})
}

// Store is a bbolt-backed session store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating bolt directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bolt bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, id model.ConversationID) ([]model.Message, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(id))
		if v == nil {
			return store.ErrNotFound
		}
		// v is only valid inside the transaction.
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store.Decode(raw)
}

func (s *Store) Put(ctx context.Context, id model.ConversationID, messages []model.Message) error {
	raw, err := store.Encode(messages)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(id), raw)
	})
	if err != nil {
		return fmt.Errorf("writing conversation %s: %w", id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id model.ConversationID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(id))
	})
}

// Ping checks the bucket is readable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return fmt.Errorf("bucket %s missing", bucketName)
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
