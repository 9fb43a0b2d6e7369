package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	vgfs "github.com/abstract-foundation/agw-session-keys/libs/fs"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockFileName = ".lock"

// FileStorage stores every entry in its own file, named after the key,
// inside a single directory. Writes are serialised across processes with
// an advisory lock, and files are replaced atomically, so a reader never
// sees a partially written value.
type FileStorage struct {
	log  *zap.Logger
	home string
	lock *flock.Flock
}

func InitialiseFileStorage(log *zap.Logger, home string) (*FileStorage, error) {
	if err := vgfs.EnsureDir(home); err != nil {
		return nil, fmt.Errorf("couldn't ensure directories at %s: %w", home, err)
	}

	return &FileStorage{
		log:  log,
		home: home,
		lock: flock.New(filepath.Join(home, lockFileName)),
	}, nil
}

func (s *FileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkContextStatus(ctx); err != nil {
		return "", false, err
	}
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	path := s.entryPath(key)

	exists, err := vgfs.FileExists(path)
	if err != nil {
		return "", false, fmt.Errorf("%w: couldn't verify file at %s: %w", ErrStorageUnavailable, path, err)
	}
	if !exists {
		return "", false, nil
	}

	buf, err := vgfs.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("%w: couldn't read file at %s: %w", ErrStorageUnavailable, path, err)
	}

	return string(buf), true, nil
}

func (s *FileStorage) Set(ctx context.Context, key, value string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	return s.withLock(func() error {
		path := s.entryPath(key)
		if err := vgfs.WriteFile(path, []byte(value)); err != nil {
			return fmt.Errorf("%w: couldn't write file at %s: %w", ErrStorageUnavailable, path, err)
		}
		return nil
	})
}

func (s *FileStorage) Remove(ctx context.Context, key string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	return s.withLock(func() error {
		path := s.entryPath(key)
		if err := vgfs.RemoveFile(path); err != nil {
			return fmt.Errorf("%w: couldn't remove file at %s: %w", ErrStorageUnavailable, path, err)
		}
		return nil
	})
}

// Watch reports the entries changed in the storage directory, whoever the
// writer is. Hidden files, such as the lock and the temporary files used
// for atomic writes, are ignored.
func (s *FileStorage) Watch(ctx context.Context, callbackFn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("couldn't create the file watcher: %w", err)
	}

	if err := watcher.Add(s.home); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("couldn't watch %s: %w", s.home, err)
	}

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn("couldn't close the file watcher", zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				key := filepath.Base(event.Name)
				if strings.HasPrefix(key, ".") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.log.Debug("storage entry changed",
					zap.String("key", key),
					zap.String("operation", event.Op.String()),
				)
				callbackFn(key)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Error("the storage watcher received an error", zap.Error(err))
			}
		}
	}()

	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

// Home returns the directory containing the entries.
func (s *FileStorage) Home() string {
	return s.home
}

func (s *FileStorage) withLock(fn func() error) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: couldn't acquire the storage lock: %w", ErrStorageUnavailable, err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.log.Warn("couldn't release the storage lock", zap.Error(err))
		}
	}()

	return fn()
}

func (s *FileStorage) entryPath(key string) string {
	return filepath.Join(s.home, key)
}
