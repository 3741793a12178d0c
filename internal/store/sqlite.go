package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the default
// store when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/batepapo.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/batepapo.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}

	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		from_name TEXT NOT NULL,
		to_name TEXT NOT NULL,
		body TEXT NOT NULL,
		type TEXT NOT NULL,
		time TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_participants_last_seen ON participants(last_seen);
	CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_name);
	CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_name);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isConstraintErr reports whether err is a SQLite constraint violation.
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// InsertParticipant creates a new participant record. A unique violation
// on the name maps to ErrDuplicate.
func (s *SQLiteStore) InsertParticipant(ctx context.Context, name string, lastSeen time.Time) (*models.Participant, error) {
	p := &models.Participant{ID: uuid.New(), Name: name, LastSeen: lastSeen}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, name, last_seen)
		VALUES (?, ?, ?)
	`, p.ID.String(), p.Name, p.LastSeen.UnixMilli())
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// FindParticipant retrieves a participant by exact name.
func (s *SQLiteStore) FindParticipant(ctx context.Context, name string) (*models.Participant, error) {
	var idStr string
	var lastSeenMs int64
	p := &models.Participant{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, last_seen FROM participants WHERE name = ?
	`, name).Scan(&idStr, &p.Name, &lastSeenMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.ID = uuid.MustParse(idStr)
	p.LastSeen = time.UnixMilli(lastSeenMs).UTC()
	return p, nil
}

// ListParticipants retrieves every participant in the store's native order.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, last_seen FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// TouchParticipant refreshes a participant's last-seen timestamp.
func (s *SQLiteStore) TouchParticipant(ctx context.Context, name string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE participants SET last_seen = ? WHERE name = ?
	`, at.UnixMilli(), name)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteParticipant removes a participant by name.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// ListParticipantsSeenBefore retrieves participants whose last heartbeat
// is strictly older than cutoff.
func (s *SQLiteStore) ListParticipantsSeenBefore(ctx context.Context, cutoff time.Time) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, last_seen FROM participants WHERE last_seen < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// CountParticipants returns the number of registered participants.
func (s *SQLiteStore) CountParticipants(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}

// InsertMessage persists a message, assigning its ULID and sequence.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, from_name, to_name, body, type, time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.From, msg.To, msg.Text, msg.Type, msg.Time)
	if err != nil {
		return err
	}

	msg.Seq, err = res.LastInsertId()
	return err
}

// FindMessage retrieves a message by ID.
func (s *SQLiteStore) FindMessage(ctx context.Context, id string) (*models.Message, error) {
	msg := &models.Message{}
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, id, from_name, to_name, body, type, time
		FROM messages WHERE id = ?
	`, id).Scan(&msg.Seq, &msg.ID, &msg.From, &msg.To, &msg.Text, &msg.Type, &msg.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// ListMessagesFor retrieves messages visible to user in insertion order.
// A positive limit keeps only the tail of the sequence.
func (s *SQLiteStore) ListMessagesFor(ctx context.Context, user string, limit int) ([]models.Message, error) {
	query := `
		SELECT seq, id, from_name, to_name, body, type, time
		FROM messages
		WHERE from_name = ? OR to_name = ? OR to_name = ?
		ORDER BY seq
	`
	args := []any{user, user, models.BroadcastTarget}
	if limit > 0 {
		query = `
			SELECT seq, id, from_name, to_name, body, type, time
			FROM messages
			WHERE from_name = ? OR to_name = ? OR to_name = ?
			ORDER BY seq DESC
			LIMIT ?
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Seq, &msg.ID, &msg.From, &msg.To, &msg.Text, &msg.Type, &msg.Time); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if limit > 0 {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

// UpdateMessage overwrites the mutable fields of a message by ID.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, msg *models.Message) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET from_name = ?, to_name = ?, body = ?, type = ?
		WHERE id = ?
	`, msg.From, msg.To, msg.Text, msg.Type, msg.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteMessage removes a message by ID.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// CountMessages returns the total number of stored messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func scanParticipants(rows *sql.Rows) ([]models.Participant, error) {
	var participants []models.Participant
	for rows.Next() {
		var idStr string
		var lastSeenMs int64
		var p models.Participant
		if err := rows.Scan(&idStr, &p.Name, &lastSeenMs); err != nil {
			return nil, err
		}
		p.ID = uuid.MustParse(idStr)
		p.LastSeen = time.UnixMilli(lastSeenMs).UTC()
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
