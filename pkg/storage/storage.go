// Package storage provides a small key-value file storage abstraction.
// alsh uses it for the history file so a configured shell can mirror
// .alsh_history to a secondary backend (S3) without the history package
// knowing which one.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested path does not exist.
var ErrNotFound = errors.New("not found")

// Storage is implemented by LocalStorage and S3Storage.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) (bool, error)
}
