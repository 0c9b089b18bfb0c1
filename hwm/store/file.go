package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/internal/lock"
)

// File formats understood by FileStore.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const fileVersion = "1.0"

const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// Metadata describes a store file
type Metadata struct {
	Version   string    `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// fileData is the on-disk layout, HWM records keyed by qualified name
type fileData struct {
	Metadata Metadata              `json:"metadata" yaml:"metadata"`
	HWMs     map[string]hwm.Record `json:"hwms" yaml:"hwms"`
}

// FileStore keeps every HWM in a single JSON or YAML file.
//
// Each operation re-reads the file while holding "<path>.lock", so several
// processes can share a store file. Writes go to a temporary file renamed
// over the target.
type FileStore struct {
	path        string
	format      string
	locks       *lock.Manager
	fs          FileSystem
	lockFactory FileLockFactory
	fileLock    FileLock
	timeFunc    func() time.Time
}

// NewFileStore opens the store file at path. The file is created on first Save.
// Its format follows the extension (.yaml, .yml or .json) unless WithFormat is given.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: file store path is required", ErrInvalidConfig)
	}

	s := &FileStore{
		path:     path,
		locks:    lock.New(),
		timeFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = OSFileSystem{}
	}
	if s.lockFactory == nil {
		s.lockFactory = FlockFactory{}
	}
	if s.format == "" {
		s.format = formatFromPath(path)
	}
	if s.format != FormatJSON && s.format != FormatYAML {
		return nil, fmt.Errorf("%w: unsupported file format %q", ErrInvalidConfig, s.format)
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s.fileLock = s.lockFactory.New(path + ".lock")

	// Fail early on unreadable files rather than on first use
	if _, err := s.loadWithLock(); err != nil {
		return nil, fmt.Errorf("failed to load hwm store: %w", err)
	}
	return s, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Path returns the store file location
func (s *FileStore) Path() string {
	return s.path
}

// Format returns "json" or "yaml"
func (s *FileStore) Format() string {
	return s.format
}

// Get implements Store
func (s *FileStore) Get(qualifiedName string) (hwm.HWM, error) {
	var rec hwm.Record
	// fileLock is a single handle, so even reads are exclusive within the process
	err := s.locks.Execute(lock.WriteOperation, func() error {
		data, err := s.loadWithLock()
		if err != nil {
			return err
		}
		r, found := data.HWMs[qualifiedName]
		if !found {
			return fmt.Errorf("%w: %s", ErrNotFound, qualifiedName)
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	h, err := hwm.Deserialize(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", qualifiedName, err)
	}
	return h, nil
}

// Save implements Store
func (s *FileStore) Save(h hwm.HWM) error {
	if h == nil {
		return fmt.Errorf("%w: cannot save nil", hwm.ErrValidation)
	}
	rec, err := h.Serialize()
	if err != nil {
		return err
	}

	return s.locks.Execute(lock.WriteOperation, func() error {
		return s.withFileLock(func() error {
			data, err := s.load()
			if err != nil {
				return err
			}
			data.HWMs[h.QualifiedName()] = rec
			if err := s.save(data); err != nil {
				return err
			}
			logger().Debug("saved hwm", "store", s.path, "qualified_name", h.QualifiedName(), "value", h.SerializeValue())
			return nil
		})
	})
}

// List implements Store
func (s *FileStore) List() ([]hwm.HWM, error) {
	var data *fileData
	err := s.locks.Execute(lock.WriteOperation, func() error {
		var err error
		data, err = s.loadWithLock()
		return err
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(data.HWMs))
	for name := range data.HWMs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]hwm.HWM, 0, len(names))
	for _, name := range names {
		h, err := hwm.Deserialize(data.HWMs[name])
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// Close implements Store. It removes the lock file.
func (s *FileStore) Close() error {
	return s.locks.Execute(lock.WriteOperation, func() error {
		_ = s.fs.Remove(s.path + ".lock")
		return nil
	})
}

func (s *FileStore) acquireLock(ctx context.Context) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}

func (s *FileStore) withFileLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	if err := s.acquireLock(ctx); err != nil {
		return err
	}
	defer func() { _ = s.fileLock.Unlock() }()
	return fn()
}

func (s *FileStore) loadWithLock() (*fileData, error) {
	var data *fileData
	err := s.withFileLock(func() error {
		var err error
		data, err = s.load()
		return err
	})
	return data, err
}

// load reads the file, callers hold the file lock
func (s *FileStore) load() (*fileData, error) {
	data := &fileData{HWMs: map[string]hwm.Record{}}

	if _, err := s.fs.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	raw, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}

	switch s.format {
	case FormatYAML:
		err = yaml.Unmarshal(raw, data)
	default:
		err = json.Unmarshal(raw, data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.format, err)
	}
	if data.HWMs == nil {
		data.HWMs = map[string]hwm.Record{}
	}

	logger().Debug("loaded hwm store", "path", s.path, "count", len(data.HWMs))
	return data, nil
}

// save writes data atomically, callers hold the file lock
func (s *FileStore) save(data *fileData) error {
	now := s.timeFunc()
	if data.Metadata.CreatedAt.IsZero() {
		data.Metadata.CreatedAt = now
	}
	data.Metadata.UpdatedAt = now
	data.Metadata.Version = fileVersion

	var (
		raw []byte
		err error
	)
	switch s.format {
	case FormatYAML:
		raw, err = yaml.Marshal(data)
	default:
		raw, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.format, err)
	}

	tmpFile := s.path + "." + uuid.NewString() + ".tmp"
	if err := s.fs.WriteFile(tmpFile, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := s.fs.Rename(tmpFile, s.path); err != nil {
		_ = s.fs.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
