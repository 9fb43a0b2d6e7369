package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStorage keeps the entries in a LevelDB database. LevelDB holds an
// exclusive lock on its directory, so only one process can use the
// storage at a time.
type LevelDBStorage struct {
	db *leveldb.DB
}

func InitialiseLevelDBStorage(path string) (*LevelDBStorage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't open the database at %s: %w", ErrStorageUnavailable, path, err)
	}

	return &LevelDBStorage{
		db: db,
	}, nil
}

func (s *LevelDBStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkContextStatus(ctx); err != nil {
		return "", false, err
	}
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: couldn't read entry %s: %w", ErrStorageUnavailable, key, err)
	}

	return string(value), true, nil
}

func (s *LevelDBStorage) Set(ctx context.Context, key, value string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("%w: couldn't write entry %s: %w", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *LevelDBStorage) Remove(ctx context.Context, key string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("%w: couldn't remove entry %s: %w", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *LevelDBStorage) Close() error {
	return s.db.Close()
}
