package store

import (
	"context"
	"sync"

	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

// Options carries backend settings resolved from configuration. Each
// backend reads only the fields it needs.
type Options struct {
	// Path is the database file for embedded backends.
	Path string

	// NATS configures the JetStream KeyValue backend.
	NATS NATSOptions

	Logger *logger.Logger
}

// NATSOptions holds NATS connection and bucket settings.
type NATSOptions struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
	Bucket   string
}

// Factory opens a backend.
type Factory func(ctx context.Context, opts Options) (Backend, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

func init() {
	RegisterBackend("memory", func(context.Context, Options) (Backend, error) {
		return NewMemoryStore(), nil
	})
}

// RegisterBackend registers a named backend. Backend packages call this from
// init(). This function is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Open opens the named backend. Backends other than "memory" are only
// available when their package is linked in.
func Open(ctx context.Context, name string, opts Options) (Backend, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, relayerr.Errorf(relayerr.CodeStoreBackendUnknown, "unsupported storage backend: %q", name)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return f(ctx, opts)
}
