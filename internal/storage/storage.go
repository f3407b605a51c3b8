// Package storage provides the named durable slots the history ledger and
// preferences persist into. Every adapter is last-writer-wins: two processes
// sharing one backend overwrite each other's slot without coordination.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// SlotHistory holds the serialized history ledger.
	SlotHistory = "history"
	// SlotTheme holds the current theme label.
	SlotTheme = "theme"
)

// ErrInvalidKey is returned for slot names that cannot be stored safely.
var ErrInvalidKey = errors.New("storage: invalid slot key")

// Storage reads and writes whole values by slot name.
type Storage interface {
	// Get returns the stored bytes and whether the slot exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the slot value.
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

func checkKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || trimmed != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
