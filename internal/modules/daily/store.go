package daily

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Store persists one payload per (data class, operating day).
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new daily store over the given database.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("repo", "daily").Logger(),
	}
}

// Save upserts the payload for (class, day). A later save for the same
// key replaces the earlier one and refreshes created_at.
func (s *Store) Save(class DataClass, day string, payload interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", class, err)
	}

	query := `
		INSERT INTO daily_data (data_class, data_date, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (data_class, data_date)
		DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at
	`
	_, err = s.db.Exec(query, string(class), day, string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save %s data for %s: %w", class, day, err)
	}

	s.log.Info().
		Str("class", string(class)).
		Str("day", day).
		Int("bytes", len(blob)).
		Msg("Saved daily data")

	return nil
}

// Load returns the stored payload for (class, day), reporting presence.
// Read-side failures surface as absent with an error for logging.
func (s *Store) Load(class DataClass, day string) (json.RawMessage, bool, error) {
	var blob string
	err := s.db.QueryRow(
		"SELECT payload FROM daily_data WHERE data_class = ? AND data_date = ?",
		string(class), day,
	).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s data for %s: %w", class, day, err)
	}
	return json.RawMessage(blob), true, nil
}

// Has reports whether a payload exists for (class, day).
func (s *Store) Has(class DataClass, day string) bool {
	_, ok, err := s.Load(class, day)
	if err != nil {
		s.log.Warn().Err(err).Str("class", string(class)).Msg("Daily store read failed")
		return false
	}
	return ok
}

// PurgeOlderThan deletes all rows with a day strictly before cutoffDay
// and returns the number deleted. The boundary day itself is retained.
func (s *Store) PurgeOlderThan(cutoffDay string) (int, error) {
	res, err := s.db.Exec("DELETE FROM daily_data WHERE data_date < ?", cutoffDay)
	if err != nil {
		return 0, fmt.Errorf("failed to purge daily data before %s: %w", cutoffDay, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}

	s.log.Info().
		Str("cutoff", cutoffDay).
		Int64("deleted", n).
		Msg("Purged old daily data")

	return int(n), nil
}
