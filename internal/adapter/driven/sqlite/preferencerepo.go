package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*PreferenceRepo)(nil)

// PreferenceRepo is the SQLite implementation of the PreferenceStore port interface.
type PreferenceRepo struct {
	db *DB
}

// NewPreferenceRepo creates a new PreferenceRepo backed by the given DB.
func NewPreferenceRepo(db *DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// GetPreference returns the stored value for key. Returns ("", nil) if the
// key has never been set; callers should apply defaults.
func (r *PreferenceRepo) GetPreference(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM preferences WHERE key = ?`

	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference inserts or replaces the value for key.
func (r *PreferenceRepo) SetPreference(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}
