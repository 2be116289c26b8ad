package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pallet-cubing-backend/internal/model"
)

// Backend is the durable key/value medium behind a State. Every mutating call
// must be persisted before it returns.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Scan(prefix string) (map[string]string, error)
	Clear() error
	Close() error
}

// --- sql ---

type sqlBackend struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewSQLBackend keeps the session in the session_entries table of db.
func NewSQLBackend(db *gorm.DB) Backend {
	return &sqlBackend{db: db, timeout: 5 * time.Second}
}

func (b *sqlBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *sqlBackend) Get(key string) (string, bool, error) {
	ctx, cancel := b.ctx()
	defer cancel()

	var entry model.SessionEntry
	err := b.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (b *sqlBackend) Set(key, value string) error {
	ctx, cancel := b.ctx()
	defer cancel()

	entry := model.SessionEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (b *sqlBackend) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()

	if err := b.db.WithContext(ctx).Where("entry_key IN ?", keys).Delete(&model.SessionEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

func (b *sqlBackend) Scan(prefix string) (map[string]string, error) {
	ctx, cancel := b.ctx()
	defer cancel()

	var entries []model.SessionEntry
	if err := b.db.WithContext(ctx).Where("entry_key LIKE ?", prefix+"%").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to scan session keys %s*: %w", prefix, err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		// LIKE treats '_' as a wildcard.
		if strings.HasPrefix(e.Key, prefix) {
			out[e.Key] = e.Value
		}
	}
	return out, nil
}

func (b *sqlBackend) Clear() error {
	ctx, cancel := b.ctx()
	defer cancel()

	if err := b.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SessionEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close is a no-op; the record store owns the connection.
func (b *sqlBackend) Close() error { return nil }

// --- badger ---

type badgerBackend struct {
	db *badger.DB
}

// OpenBadgerBackend opens (or creates) a badger directory at path. An empty
// path keeps everything in memory.
func OpenBadgerBackend(path string) (Backend, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger session store at %q: %w", path, err)
	}
	return &badgerBackend{db: db}, nil
}

func (b *badgerBackend) Get(key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return string(value), true, nil
}

func (b *badgerBackend) Set(key, value string) error {
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	}); err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (b *badgerBackend) Delete(keys ...string) error {
	if err := b.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

func (b *badgerBackend) Scan(prefix string) (map[string]string, error) {
	out := make(map[string]string)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.KeyCopy(nil))] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan session keys %s*: %w", prefix, err)
	}
	return out, nil
}

func (b *badgerBackend) Clear() error {
	if err := b.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (b *badgerBackend) Close() error {
	return b.db.Close()
}

// --- memory ---

type memoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend keeps the session in process memory only.
func NewMemoryBackend() Backend {
	return &memoryBackend{data: make(map[string]string)}
}

func (b *memoryBackend) Get(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *memoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	return nil
}

func (b *memoryBackend) Delete(keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.data, k)
	}
	return nil
}

func (b *memoryBackend) Scan(prefix string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range b.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

func (b *memoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]string)
	return nil
}

func (b *memoryBackend) Close() error { return nil }
