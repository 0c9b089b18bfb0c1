package store

import "time"

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithFileSystem replaces the OS file system, mostly for tests
func WithFileSystem(fs FileSystem) FileStoreOption {
	return func(s *FileStore) {
		s.fs = fs
	}
}

// WithFileLockFactory replaces the flock based locks
func WithFileLockFactory(factory FileLockFactory) FileStoreOption {
	return func(s *FileStore) {
		s.lockFactory = factory
	}
}

// WithTimeFunc sets the clock used for file metadata
func WithTimeFunc(fn func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.timeFunc = fn
	}
}

// WithFormat forces the encoding instead of guessing it from the file extension
func WithFormat(format string) FileStoreOption {
	return func(s *FileStore) {
		s.format = format
	}
}
