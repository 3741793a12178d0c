package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint hits.
const uniqueViolation = "23505"

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist. The unique index on
// participants.name is the second line of defense behind the registry's
// pre-check.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id UUID PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		last_seen TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq BIGSERIAL PRIMARY KEY,
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

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertParticipant creates a new participant record. A unique violation
// on the name maps to ErrDuplicate.
func (s *PostgresStore) InsertParticipant(ctx context.Context, name string, lastSeen time.Time) (*models.Participant, error) {
	p := &models.Participant{ID: uuid.New(), Name: name, LastSeen: lastSeen}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (id, name, last_seen)
		VALUES ($1, $2, $3)
	`, p.ID, p.Name, p.LastSeen)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// FindParticipant retrieves a participant by exact name.
func (s *PostgresStore) FindParticipant(ctx context.Context, name string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, last_seen FROM participants WHERE name = $1
	`, name).Scan(&p.ID, &p.Name, &p.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListParticipants retrieves every participant in the store's native order.
func (s *PostgresStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, last_seen FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.LastSeen); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// TouchParticipant refreshes a participant's last-seen timestamp.
func (s *PostgresStore) TouchParticipant(ctx context.Context, name string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE participants SET last_seen = $2 WHERE name = $1
	`, name, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteParticipant removes a participant by name.
func (s *PostgresStore) DeleteParticipant(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM participants WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListParticipantsSeenBefore retrieves participants whose last heartbeat
// is strictly older than cutoff.
func (s *PostgresStore) ListParticipantsSeenBefore(ctx context.Context, cutoff time.Time) ([]models.Participant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, last_seen FROM participants WHERE last_seen < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.LastSeen); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// CountParticipants returns the number of registered participants.
func (s *PostgresStore) CountParticipants(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}

// InsertMessage persists a message, assigning its ULID and sequence.
func (s *PostgresStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, from_name, to_name, body, type, time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`, msg.ID, msg.From, msg.To, msg.Text, msg.Type, msg.Time).Scan(&msg.Seq)
}

// FindMessage retrieves a message by ID.
func (s *PostgresStore) FindMessage(ctx context.Context, id string) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT seq, id, from_name, to_name, body, type, time
		FROM messages WHERE id = $1
	`, id).Scan(&msg.Seq, &msg.ID, &msg.From, &msg.To, &msg.Text, &msg.Type, &msg.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// ListMessagesFor retrieves messages visible to user in insertion order.
// A positive limit keeps only the tail of the sequence.
func (s *PostgresStore) ListMessagesFor(ctx context.Context, user string, limit int) ([]models.Message, error) {
	query := `
		SELECT seq, id, from_name, to_name, body, type, time
		FROM messages
		WHERE from_name = $1 OR to_name = $1 OR to_name = $2
		ORDER BY seq
	`
	args := []any{user, models.BroadcastTarget}
	if limit > 0 {
		query = `
			SELECT seq, id, from_name, to_name, body, type, time
			FROM messages
			WHERE from_name = $1 OR to_name = $1 OR to_name = $2
			ORDER BY seq DESC
			LIMIT $3
		`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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
		// The tail was fetched newest-first; restore insertion order.
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}

// UpdateMessage overwrites the mutable fields of a message by ID.
func (s *PostgresStore) UpdateMessage(ctx context.Context, msg *models.Message) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET from_name = $2, to_name = $3, body = $4, type = $5
		WHERE id = $1
	`, msg.ID, msg.From, msg.To, msg.Text, msg.Type)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMessage removes a message by ID.
func (s *PostgresStore) DeleteMessage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMessages returns the total number of stored messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
