package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oneminute/oneminute-go/internal/model"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferenceRepository persists generator session settings.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS generator_preferences (
		session_id CHAR(26)  NOT NULL PRIMARY KEY,
		length     INT       NOT NULL,
		uppercase  BOOLEAN   NOT NULL,
		lowercase  BOOLEAN   NOT NULL,
		numbers    BOOLEAN   NOT NULL,
		symbols    BOOLEAN   NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

const upsertPreferencesQuery = `
	INSERT INTO generator_preferences (session_id, length, uppercase, lowercase, numbers, symbols)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		length    = VALUES(length),
		uppercase = VALUES(uppercase),
		lowercase = VALUES(lowercase),
		numbers   = VALUES(numbers),
		symbols   = VALUES(symbols)`

// EnsureSchema creates the preferences table if it does not exist.
func (r *PreferenceRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaQuery)
	return err
}

// Save inserts or replaces the preferences of a session.
func (r *PreferenceRepository) Save(ctx context.Context, p model.Preferences) error {
	_, err := r.db.ExecContext(ctx, upsertPreferencesQuery,
		p.SessionID,
		p.Length,
		p.Options.Uppercase,
		p.Options.Lowercase,
		p.Options.Numbers,
		p.Options.Symbols,
	)
	return err
}

// Get retrieves the preferences stored for a session.
func (r *PreferenceRepository) Get(ctx context.Context, sessionID string) (model.Preferences, error) {
	query := `SELECT session_id, length, uppercase, lowercase, numbers, symbols, updated_at
		FROM generator_preferences WHERE session_id = ?`

	var p model.Preferences
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&p.SessionID, &p.Length,
		&p.Options.Uppercase, &p.Options.Lowercase, &p.Options.Numbers, &p.Options.Symbols,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preferences{}, ErrPreferencesNotFound
		}
		return model.Preferences{}, err
	}

	return p, nil
}

// Delete removes the preferences of a session. It returns ErrPreferencesNotFound
// when nothing was stored.
func (r *PreferenceRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM generator_preferences WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPreferencesNotFound
	}
	return nil
}
