package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gptyar/telegram-relay/internal/model"
	"github.com/gptyar/telegram-relay/internal/store"
)

func init() {
	store.RegisterBackend("nats", func(ctx context.Context, opts store.Options) (store.Backend, error) {
		client, err := Connect(ctx, Config{
			URL:      opts.NATS.URL,
			CAFile:   opts.NATS.CAFile,
			CertFile: opts.NATS.CertFile,
			KeyFile:  opts.NATS.KeyFile,
			Token:    opts.NATS.Token,
		}, opts.Logger)
		if err != nil {
			return nil, err
		}

		kv, err := NewKVStore(ctx, client, opts.NATS.Bucket)
		if err != nil {
			client.Close()
			return nil, err
		}
		return kv, nil
	})
}

// DefaultBucket is the KeyValue bucket holding conversation logs.
const DefaultBucket = "CONVERSATIONS"

// Compile-time interface check.
var _ store.Backend = (*KVStore)(nil)

// KVStore keeps one KeyValue entry per conversation. Entries have no TTL.
type KVStore struct {
	client *Client
	kv     jetstream.KeyValue
}

// NewKVStore binds to bucket, creating it on first use.
func NewKVStore(ctx context.Context, client *Client, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	js := client.JetStream()

	kv, err := js.KeyValue(ctx, bucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "Conversation logs keyed by chat",
			History:     1,
			Storage:     jetstream.FileStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to bind KeyValue bucket %s: %w", bucket, err)
	}

	return &KVStore{client: client, kv: kv}, nil
}

// Key maps a conversation id onto the KeyValue key alphabet, which does
// not allow ':'.
func Key(id model.ConversationID) string {
	return strings.ReplaceAll(string(id), ":", ".")
}

func (s *KVStore) Get(ctx context.Context, id model.ConversationID) ([]model.Message, error) {
	entry, err := s.kv.Get(ctx, Key(id))
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	return store.Decode(entry.Value())
}

// Put overwrites the entry. It does not use the revision-checked Update, so
// the last writer wins.
func (s *KVStore) Put(ctx context.Context, id model.ConversationID, messages []model.Message) error {
	data, err := store.Encode(messages)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, Key(id), data); err != nil {
		return fmt.Errorf("failed to put conversation %s: %w", id, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, id model.ConversationID) error {
	if err := s.kv.Delete(ctx, Key(id)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}

// Ping reports whether the NATS connection is up.
func (s *KVStore) Ping(ctx context.Context) error {
	if !s.client.IsConnected() {
		return errors.New("NATS not connected")
	}
	return nil
}

// Close closes the underlying connection.
func (s *KVStore) Close() error {
	s.client.Close()
	return nil
}
