// ABOUTME: Message persistence methods for the SQLite store
// ABOUTME: Covers sending, reading, marking read, and per-user message listings

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateMessage inserts a new message with sent_at set to the current time.
// Returns ErrUnknownUser if either username does not reference an existing user.
func (s *SQLiteStore) CreateMessage(ctx context.Context, from, to, body string) (*Message, error) {
	sentAt := time.Now().UTC().Truncate(time.Second)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES (?, ?, ?, ?)
	`, from, to, body, formatTime(sentAt))
	if err != nil {
		if isForeignKeyError(err) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}

	s.logger.Debug("created message", "id", id, "from", from, "to", to)

	return &Message{
		ID:     id,
		Body:   body,
		SentAt: sentAt,
		From:   Profile{Username: from},
		To:     Profile{Username: to},
	}, nil
}

// GetMessage retrieves a message by ID, joined with both users' public profiles.
// Returns ErrNotFound if the message doesn't exist.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u1.username, u1.first_name, u1.last_name, u1.phone,
		       u2.username, u2.first_name, u2.last_name, u2.phone
		FROM messages AS m
		JOIN users AS u1 ON m.from_username = u1.username
		JOIN users AS u2 ON m.to_username = u2.username
		WHERE m.id = ?
	`

	var msg Message
	var sentAtStr string
	var readAtStr sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.Body, &sentAtStr, &readAtStr,
		&msg.From.Username, &msg.From.FirstName, &msg.From.LastName, &msg.From.Phone,
		&msg.To.Username, &msg.To.FirstName, &msg.To.LastName, &msg.To.Phone,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}

	if err := fillTimestamps(&msg, sentAtStr, readAtStr); err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetMessageRecipient retrieves only the recipient username of a message.
// Used for the recipient check before marking a message read.
// Returns ErrNotFound if the message doesn't exist.
func (s *SQLiteStore) GetMessageRecipient(ctx context.Context, id int64) (string, error) {
	var to string
	err := s.db.QueryRowContext(ctx,
		`SELECT to_username FROM messages WHERE id = ?`, id,
	).Scan(&to)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying message recipient: %w", err)
	}

	return to, nil
}

// MarkMessageRead sets read_at to the current time and returns the id and
// new read_at. Re-marking an already-read message refreshes the timestamp.
// Returns ErrNotFound if the message doesn't exist.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id int64) (*Message, error) {
	readAt := time.Now().UTC().Truncate(time.Second)

	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read_at = ? WHERE id = ?`,
		formatTime(readAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("marked message read", "id", id)

	return &Message{ID: id, ReadAt: &readAt}, nil
}

// MessagesTo returns messages received by the given user, with the sender's
// public profile populated, ordered by sent_at ascending.
func (s *SQLiteStore) MessagesTo(ctx context.Context, username string) ([]*Message, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.from_username = u.username
		WHERE m.to_username = ?
		ORDER BY m.sent_at ASC, m.id ASC
	`

	return s.queryMessages(ctx, query, username, true)
}

// MessagesFrom returns messages sent by the given user, with the recipient's
// public profile populated, ordered by sent_at ascending.
func (s *SQLiteStore) MessagesFrom(ctx context.Context, username string) ([]*Message, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.to_username = u.username
		WHERE m.from_username = ?
		ORDER BY m.sent_at ASC, m.id ASC
	`

	return s.queryMessages(ctx, query, username, false)
}

// queryMessages runs a one-sided message listing. When counterpartIsSender
// is true the joined profile is stored in From, otherwise in To.
func (s *SQLiteStore) queryMessages(ctx context.Context, query, username string, counterpartIsSender bool) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var sentAtStr string
		var readAtStr sql.NullString
		var p Profile

		if err := rows.Scan(
			&msg.ID, &msg.Body, &sentAtStr, &readAtStr,
			&p.Username, &p.FirstName, &p.LastName, &p.Phone,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		if counterpartIsSender {
			msg.From = p
		} else {
			msg.To = p
		}

		if err := fillTimestamps(&msg, sentAtStr, readAtStr); err != nil {
			return nil, err
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// fillTimestamps parses the stored sent_at/read_at strings into the message.
func fillTimestamps(msg *Message, sentAtStr string, readAtStr sql.NullString) error {
	sentAt, err := parseTime(sentAtStr)
	if err != nil {
		return fmt.Errorf("parsing sent_at: %w", err)
	}
	msg.SentAt = sentAt

	if readAtStr.Valid {
		readAt, err := parseTime(readAtStr.String)
		if err != nil {
			return fmt.Errorf("parsing read_at: %w", err)
		}
		msg.ReadAt = &readAt
	}

	return nil
}
