// ABOUTME: User persistence methods for the SQLite store
// ABOUTME: Covers registration inserts, credential lookups, and login timestamps

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateUser inserts a new user record.
// Returns ErrUsernameExists if the username is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		formatTime(user.JoinAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "username", user.Username)
	return nil
}

// GetUser retrieves a user by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = ?
	`

	var user User
	var joinAtStr string
	var lastLoginAtStr sql.NullString

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&joinAtStr,
		&lastLoginAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.JoinAt, err = parseTime(joinAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing join_at: %w", err)
	}

	if lastLoginAtStr.Valid {
		t, err := parseTime(lastLoginAtStr.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_login_at: %w", err)
		}
		user.LastLoginAt = &t
	}

	return &user, nil
}

// GetUserCredentials retrieves the stored password hash for a username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserCredentials(ctx context.Context, username string) (string, error) {
	var passwordHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = ?`, username,
	).Scan(&passwordHash)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying user credentials: %w", err)
	}

	return passwordHash, nil
}

// ListUsers returns the public profiles of all users, ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return profiles, nil
}

// UpdateLastLogin sets last_login_at to the current time.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateLastLogin(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE username = ?`,
		formatTime(time.Now()), username,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated last login", "username", username)
	return nil
}
