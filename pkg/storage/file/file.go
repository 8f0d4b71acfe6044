// Package file implements a Store backed by a directory of JSON files,
// one file per storage key. Writes are atomic (temp file plus rename)
// so another process watching the directory never observes a partial
// document.
package file

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// Ext is the file extension appended to every storage key.
const Ext = ".json"

// Config holds the file store configuration.
type Config struct {
	// Dir is the data directory. Created if missing.
	Dir string
	// WriteAttempts is how many times a failed write is retried before
	// Save reports failure. Defaults to 3.
	WriteAttempts int
	// RetryDelay is the pause between write attempts. Defaults to 50ms.
	RetryDelay time.Duration
}

// Store persists each key as <dir>/<key>.json.
type Store struct {
	dir           string
	writeAttempts uint
	retryDelay    time.Duration
	logger        *slog.Logger
}

// New creates the data directory if needed and returns a file store.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WriteAttempts <= 0 {
		cfg.WriteAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 50 * time.Millisecond
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{
		dir:           cfg.Dir,
		writeAttempts: uint(cfg.WriteAttempts),
		retryDelay:    cfg.RetryDelay,
		logger:        logger,
	}, nil
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a storage key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+Ext)
}

// KeyForPath translates a file path inside the data directory back to
// its storage key. ok is false for files the store does not own.
func KeyForPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, Ext) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, Ext), true
}

// Save writes v as JSON under key. Transient write errors are retried a
// few times; persistent failure is logged and reported as false, with
// the previous file left intact.
func (s *Store) Save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to serialize value", "key", key, "error", err)
		return false
	}

	err = retry.Do(
		func() error { return s.writeAtomic(key, data) },
		retry.Attempts(s.writeAttempts),
		retry.Delay(s.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.logger.Error("failed to save to store", "key", key, "error", err)
		return false
	}
	return true
}

// writeAtomic writes data to a temp file in the same directory and
// renames it over the target, so readers and watchers see either the
// old document or the new one.
func (s *Store) writeAtomic(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load decodes the JSON stored under key into dst. Missing files and
// parse failures return false with dst untouched.
func (s *Store) Load(key string, dst any) bool {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to load from store", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("malformed stored value", "key", key, "error", err)
		return false
	}
	return true
}

// Delete removes the file backing key, if any.
func (s *Store) Delete(key string) {
	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Error("failed to delete from store", "key", key, "error", err)
	}
}

// Keys lists the storage keys present in the data directory.
func (s *Store) Keys() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("failed to list store", "dir", s.dir, "error", err)
		return nil
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if key, ok := KeyForPath(entry.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
