package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("key not found")

type Config struct {
	Path string
	// InMemory keeps everything in memory, Path is ignored
	InMemory bool
}

type Storage interface {
	Close() error

	GetKey(key []byte) ([]byte, error)
	GetByPrefix(prefix []byte) ([]*KeyValueItem, error)

	// ListKeys returns the keys starting with prefix, in key order. A
	// trailing * is accepted and ignored.
	ListKeys(prefix string) ([]string, error)

	// CountKeysByPrefix only walks the lsm tree, values are never read
	CountKeysByPrefix(prefix []byte) (int64, error)

	Set(key, value []byte) error
	Delete(key []byte) error

	Vacuum() error

	// Backup streams every version newer than since to w and returns the
	// version to pass as since for the next incremental backup
	Backup(ctx context.Context, w io.Writer, since uint64) (uint64, error)
	Load(r io.Reader) error

	DbPath() string
}

type KeyValueItem struct {
	Key   []byte
	Value []byte
}

type BadgerStorage struct {
	config *Config
	db     *badger.DB
}

// Create storage at the particular path
func NewWithPath(path string) (Storage, error) {
	return New(&Config{
		Path: path,
	})
}

// Create storage with the given config
func New(c *Config) (Storage, error) {
	opts := badger.DefaultOptions(c.Path)
	if c.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// badger logs through its own logger, keep it quiet
	db, err := badger.Open(
		opts.WithSyncWrites(!c.InMemory).WithLogger(nil),
	)

	if err != nil {
		return nil, fmt.Errorf("cannot open storage at %s: %w", c.Path, err)
	}

	return &BadgerStorage{
		config: c,
		db:     db,
	}, nil
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStorage) Set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *BadgerStorage) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// scan visits every item under prefix in key order. Values are only
// prefetched when withValues is set.
func (s *BadgerStorage) scan(prefix []byte, withValues bool, visit func(item *badger.Item) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = withValues
		if withValues {
			opts.PrefetchSize = 30
		}

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := visit(it.Item()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStorage) GetByPrefix(prefix []byte) ([]*KeyValueItem, error) {
	var result []*KeyValueItem

	err := s.scan(prefix, true, func(item *badger.Item) error {
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		result = append(result, &KeyValueItem{Key: item.KeyCopy(nil), Value: value})
		return nil
	})

	return result, err
}

func (s *BadgerStorage) CountKeysByPrefix(prefix []byte) (int64, error) {
	var total int64
	err := s.scan(prefix, false, func(*badger.Item) error {
		total++
		return nil
	})
	return total, err
}

func (s *BadgerStorage) ListKeys(prefix string) ([]string, error) {
	var keys []string
	err := s.scan([]byte(strings.TrimSuffix(prefix, "*")), false, func(item *badger.Item) error {
		keys = append(keys, string(item.KeyCopy(nil)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *BadgerStorage) GetKey(key []byte) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

// Vacuum reclaims value log space. Having nothing to rewrite is not an error.
func (s *BadgerStorage) Vacuum() error {
	if s.config.InMemory {
		return nil
	}
	err := s.db.RunValueLogGC(0.7)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

func (s *BadgerStorage) Backup(ctx context.Context, w io.Writer, since uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.db.Backup(w, since)
}

// Load restores a backup produced by Backup. Keys present in both are
// overwritten.
func (s *BadgerStorage) Load(r io.Reader) error {
	return s.db.Load(r, 256)
}

// DbPath is the data directory, empty for an in-memory store
func (s *BadgerStorage) DbPath() string {
	if s.config.InMemory {
		return ""
	}
	return s.config.Path
}

// Destroy closes the database and wipes its data directory
func Destroy(s Storage) error {
	if err := s.Close(); err != nil {
		return err
	}
	if s.DbPath() == "" {
		return nil
	}
	return os.RemoveAll(s.DbPath())
}
