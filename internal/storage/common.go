package storage

import "errors"

const (
	OneKB = 1 << 10
	OneMB = 1 << 20

	// 8KB page size, similar to PostgreSQL
	PageSize = OneKB * 8
)

const (
	FileMode0644 = 0o644 // rw-r--r--
	FileMode0755 = 0o755 // rwxr-xr-x
)

var (
	ErrFileExists   = errors.New("storage: file already exists")
	ErrFileNotFound = errors.New("storage: file not found")
	ErrWrongSize    = errors.New("storage: buffer size != PageSize")
	ErrBadPageNo    = errors.New("storage: page number out of range")
)
