package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferenceStore_ThemeRoundTrip(t *testing.T) {
	store, err := NewPreferenceStore(filepath.Join(t.TempDir(), "prefs.db"))
	assert.NoError(t, err)
	defer store.Close()

	theme, err := store.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, DefaultTheme, theme)

	assert.NoError(t, store.SetTheme("dark"))
	theme, err = store.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, "dark", theme)

	// Setting again overwrites instead of erroring.
	assert.NoError(t, store.SetTheme("light"))
	theme, err = store.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, "light", theme)
}

func TestPreferenceStore_RejectsEmptyTheme(t *testing.T) {
	store, err := NewPreferenceStore(filepath.Join(t.TempDir(), "prefs.db"))
	assert.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.SetTheme(""))
}
