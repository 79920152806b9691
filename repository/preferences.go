package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// The display theme is the single preference the console persists locally.
// Everything else lives in memory or behind the backend.
const themeKey = "display_theme"

// DefaultTheme is used until the user picks something else.
const DefaultTheme = "light"

// PreferenceStore persists UI preferences in a local sqlite database.
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore opens (and if needed creates) the preference database.
func NewPreferenceStore(dbPath string) (*PreferenceStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preference directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &PreferenceStore{db: db}, nil
}

// Close releases the database handle.
func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

// GetTheme returns the persisted display theme, or the default when nothing
// was stored yet.
func (s *PreferenceStore) GetTheme() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, themeKey).Scan(&value)
	if err == sql.ErrNoRows {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme preference: %w", err)
	}
	return value, nil
}

// SetTheme persists the display theme.
func (s *PreferenceStore) SetTheme(theme string) error {
	if theme == "" {
		return fmt.Errorf("theme must not be empty")
	}
	_, err := s.db.Exec(`INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, themeKey, theme)
	if err != nil {
		return fmt.Errorf("failed to store theme preference: %w", err)
	}
	return nil
}
