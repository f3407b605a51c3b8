package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profitpro/internal/storage"
)

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("unavailable")
}

func (brokenStorage) Set(context.Context, string, []byte) error {
	return errors.New("unavailable")
}

func TestThemeDefaultsToLight(t *testing.T) {
	themes := Themes{Storage: storage.NewMemoryStore()}
	got, err := themes.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, ThemeLight, got)
}

func TestThemeSetAndToggle(t *testing.T) {
	mem := storage.NewMemoryStore()
	themes := Themes{Storage: mem}
	ctx := context.Background()

	got, err := themes.Set(ctx, " Dark ")
	require.NoError(t, err)
	require.Equal(t, ThemeDark, got)

	raw, ok, err := mem.Get(ctx, storage.SlotTheme)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", string(raw))

	got, err = themes.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, ThemeLight, got)

	got, err = themes.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, ThemeDark, got)
}

func TestThemeRejectsUnknown(t *testing.T) {
	themes := Themes{Storage: storage.NewMemoryStore()}
	_, err := themes.Set(context.Background(), "solarized")
	require.ErrorIs(t, err, ErrInvalidTheme)
}

func TestThemeIgnoresGarbage(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(context.Background(), storage.SlotTheme, []byte("neon")))
	got, err := Themes{Storage: mem}.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, ThemeLight, got)
}

func TestThemeStorageFailure(t *testing.T) {
	themes := Themes{Storage: brokenStorage{}}
	got, err := themes.Get(context.Background())
	require.Error(t, err)
	require.Equal(t, ThemeLight, got)

	_, err = themes.Set(context.Background(), ThemeDark)
	require.Error(t, err)
}
