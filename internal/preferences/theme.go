package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/profitpro/internal/storage"
)

const (
	// ThemeLight is the default theme.
	ThemeLight = "light"
	// ThemeDark is the alternate theme.
	ThemeDark = "dark"
)

// ErrInvalidTheme is returned when setting a theme other than light or dark.
var ErrInvalidTheme = errors.New("theme must be light or dark")

// Storage is the slice of the durable-storage port the theme slot needs.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Themes persists the theme label as plain text in its own slot.
type Themes struct {
	Storage Storage
	Slot    string
}

func (t Themes) slot() string {
	if t.Slot == "" {
		return storage.SlotTheme
	}
	return t.Slot
}

// Get returns the stored theme. A missing or unrecognised value reads as light.
func (t Themes) Get(ctx context.Context) (string, error) {
	if t.Storage == nil {
		return ThemeLight, errors.New("theme storage not configured")
	}
	raw, ok, err := t.Storage.Get(ctx, t.slot())
	if err != nil {
		return ThemeLight, fmt.Errorf("read theme: %w", err)
	}
	if !ok {
		return ThemeLight, nil
	}
	theme, err := normalize(string(raw))
	if err != nil {
		return ThemeLight, nil
	}
	return theme, nil
}

// Set stores theme after normalising it.
func (t Themes) Set(ctx context.Context, theme string) (string, error) {
	if t.Storage == nil {
		return "", errors.New("theme storage not configured")
	}
	normalized, err := normalize(theme)
	if err != nil {
		return "", err
	}
	if err := t.Storage.Set(ctx, t.slot(), []byte(normalized)); err != nil {
		return normalized, fmt.Errorf("write theme: %w", err)
	}
	return normalized, nil
}

// Toggle flips between light and dark and stores the result.
func (t Themes) Toggle(ctx context.Context) (string, error) {
	current, err := t.Get(ctx)
	if err != nil {
		return current, err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return t.Set(ctx, next)
}

func normalize(theme string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", ErrInvalidTheme
	}
}
