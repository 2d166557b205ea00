package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"golang.org/x/crypto/blake2b"
)

// Badger GC defaults.
const (
	// DefaultGCInterval is how often the value log GC runs.
	DefaultGCInterval = 5 * time.Minute

	// gcDiscardRatio is the ratio passed to Badger's value log GC.
	gcDiscardRatio = 0.5
)

// Badger is a persistent replay cache. Replays are rejected across
// process restarts for as long as the entry TTL has not lapsed, which
// closes the window a restart opens with the in-memory cache.
//
// Cache keys are hashed to 32-byte BLAKE2b digests before hitting the
// store, giving fixed-size keys and keeping raw tokens off disk.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	gcInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// BadgerOption configures a Badger cache.
type BadgerOption func(*Badger)

// WithGCInterval sets the value log GC interval.
func WithGCInterval(interval time.Duration) BadgerOption {
	return func(b *Badger) {
		b.gcInterval = interval
	}
}

// NewBadger opens (or creates) a Badger-backed replay cache in dir.
func NewBadger(dir string, logger *slog.Logger, opts ...BadgerOption) (*Badger, error) {
	if dir == "" {
		return nil, fmt.Errorf("replay: badger dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	options := badger.DefaultOptions(dir)
	options.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("replay: open badger: %w", err)
	}

	b := &Badger{
		db:         db,
		logger:     logger,
		gcInterval: DefaultGCInterval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.gcLoop()

	logger.Info("badger replay cache opened", "dir", dir)

	return b, nil
}

// hashKey maps a cache key to its fixed-size store key.
func hashKey(key string) []byte {
	sum := blake2b.Sum256([]byte(key))
	return sum[:]
}

// Has reports whether key is present. Badger drops expired entries
// from reads itself, so a TTL lapse reads as absent.
func (b *Badger) Has(_ context.Context, key string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(hashKey(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("replay: badger get: %w", err)
	}
	return true, nil
}

// Add records key for ttl.
func (b *Badger) Add(_ context.Context, key string, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(hashKey(key), nil).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("replay: badger set: %w", err)
	}
	return nil
}

// Close stops the GC loop and closes the store.
func (b *Badger) Close() error {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
	<-b.doneCh
	return b.db.Close()
}

func (b *Badger) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// RunValueLogGC returns ErrNoRewrite when there was nothing
			// to collect; that is the common case, not a failure.
			for {
				if err := b.db.RunValueLogGC(gcDiscardRatio); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						b.logger.Warn("badger value log gc failed", "error", err)
					}
					break
				}
			}
		case <-b.stopCh:
			return
		}
	}
}

// badgerLogger adapts Badger's logger interface onto slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
