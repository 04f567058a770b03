package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

const profilesSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id                TEXT PRIMARY KEY,
	first_name        TEXT NOT NULL DEFAULT '',
	name              TEXT NOT NULL DEFAULT '',
	display_name      TEXT NOT NULL DEFAULT '',
	gender            TEXT NOT NULL DEFAULT '',
	bio               TEXT NOT NULL DEFAULT '',
	highlight_color   TEXT NOT NULL DEFAULT '',
	profile_picture   TEXT NOT NULL DEFAULT '',
	interests_json    TEXT NOT NULL DEFAULT '',
	availability_json TEXT NOT NULL DEFAULT '',
	profile_completed INTEGER NOT NULL DEFAULT 0,
	updated_at        INTEGER NOT NULL
)`

// SQLiteRepository stores profiles in a single SQLite table
type SQLiteRepository struct {
	db           *sql.DB
	timeProvider TimeProvider
}

var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(path string, timeProvider TimeProvider) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperr.InvalidArgument("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.Unavailable(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperr.Unavailable(err, "ping sqlite db")
	}

	repo, err := NewSQLiteRepository(db, timeProvider)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wraps an open database and ensures the schema exists
func NewSQLiteRepository(db *sql.DB, timeProvider TimeProvider) (*SQLiteRepository, error) {
	if db == nil {
		return nil, apperr.InvalidArgument("db is required")
	}
	if timeProvider == nil {
		timeProvider = SystemTime()
	}

	repo := &SQLiteRepository{db: db, timeProvider: timeProvider}
	if err := repo.initSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	if _, err := r.db.Exec(profilesSchema); err != nil {
		return apperr.Unavailable(err, "create profiles table")
	}
	return nil
}

// Close releases the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new profile row
func (r *SQLiteRepository) Create(ctx context.Context, record *profile.Record) error {
	if record == nil {
		return apperr.InvalidArgument("record cannot be nil")
	}
	if record.ID == "" {
		return apperr.InvalidArgument("record ID is required")
	}

	interests, err := encodeJSON(record.Interests)
	if err != nil {
		return err
	}
	availability, err := encodeJSON(record.Availability)
	if err != nil {
		return err
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.timeProvider.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, first_name, name, display_name, gender, bio, highlight_color,
			profile_picture, interests_json, availability_json, profile_completed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		record.ID, record.FirstName, record.Name, record.DisplayName, string(record.Gender), record.Bio,
		string(record.HighlightColor), record.ProfilePicture, interests, availability,
		boolToInt(record.ProfileCompleted), updatedAt.UnixMilli(),
	)
	if err != nil {
		return apperr.Unavailable(err, "insert profile").WithMeta("profile_id", record.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.AlreadyExistsf("profile '%s' already exists", record.ID).
			WithMeta("profile_id", record.ID)
	}

	return nil
}

// Get reads a profile row
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*profile.Record, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("profile ID is required")
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, name, display_name, gender, bio, highlight_color, profile_picture,
			interests_json, availability_json, profile_completed, updated_at
		 FROM profiles WHERE id = ?`, id)

	var (
		record       profile.Record
		gender       string
		color        string
		interests    string
		availability string
		completed    int64
		updatedAt    int64
	)
	err := row.Scan(&record.ID, &record.FirstName, &record.Name, &record.DisplayName, &gender, &record.Bio,
		&color, &record.ProfilePicture, &interests, &availability, &completed, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("profile '%s' not found", id).WithMeta("profile_id", id)
		}
		return nil, apperr.Unavailable(err, "select profile").WithMeta("profile_id", id)
	}

	record.Gender = profile.Gender(gender)
	record.HighlightColor = profile.HighlightColor(color)
	record.ProfileCompleted = completed != 0
	record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if interests != "" {
		if err := json.Unmarshal([]byte(interests), &record.Interests); err != nil {
			return nil, apperr.Wrapf(err, "decode interests for '%s'", id)
		}
	}
	if availability != "" {
		if err := json.Unmarshal([]byte(availability), &record.Availability); err != nil {
			return nil, apperr.Wrapf(err, "decode availability for '%s'", id)
		}
	}

	return &record, nil
}

// Merge applies the update with one UPDATE statement inside a transaction
func (r *SQLiteRepository) Merge(ctx context.Context, id string, update *profile.Update) error {
	if id == "" {
		return apperr.InvalidArgument("profile ID is required")
	}
	if update.IsEmpty() {
		return apperr.InvalidArgument("update has no fields")
	}

	sets, args, err := updateColumns(update)
	if err != nil {
		return err
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.timeProvider.Now().UnixMilli(), id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable(err, "begin merge").WithMeta("profile_id", id)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Unavailable(err, "merge profile").WithMeta("profile_id", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Unavailable(err, "merge profile").WithMeta("profile_id", id)
	}
	if n == 0 {
		return apperr.NotFoundf("profile '%s' not found", id).WithMeta("profile_id", id)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Unavailable(err, "commit merge").WithMeta("profile_id", id)
	}
	return nil
}

func updateColumns(update *profile.Update) ([]string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if update.ProfileCompleted != nil {
		add("profile_completed", boolToInt(*update.ProfileCompleted))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.Gender != nil {
		add("gender", string(*update.Gender))
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.HighlightColor != nil {
		add("highlight_color", string(*update.HighlightColor))
	}
	if update.ProfilePicture != nil {
		add("profile_picture", *update.ProfilePicture)
	}
	if update.Interests != nil {
		data, err := encodeJSON(update.Interests)
		if err != nil {
			return nil, nil, err
		}
		add("interests_json", data)
	}
	if update.Availability != nil {
		data, err := encodeJSON(update.Availability)
		if err != nil {
			return nil, nil, err
		}
		add("availability_json", data)
	}

	return sets, args, nil
}

func encodeJSON[T any](v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", apperr.Wrap(err, "encode json column")
	}
	if string(data) == "null" {
		return "", nil
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
