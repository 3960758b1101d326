// ABOUTME: Store interface and data types for messagely persistence
// ABOUTME: Defines User, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when trying to register a username that is taken
var ErrUsernameExists = errors.New("username already exists")

// ErrUnknownUser is returned when a message references a username that does not exist
var ErrUnknownUser = errors.New("unknown user")

// User represents a credential record with profile fields.
// PasswordHash is the opaque output of the password hasher and is never
// exposed through the API.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLoginAt  *time.Time // nil until the first successful login
}

// Profile is the public subset of a user record.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Profile returns the public subset of the user record.
func (u *User) Profile() Profile {
	return Profile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Message represents a message between two users. From and To carry the
// public profiles of the sender and recipient; list queries populate only
// the counterpart side.
type Message struct {
	ID     int64
	Body   string
	SentAt time.Time
	ReadAt *time.Time // nil until the recipient marks it read
	From   Profile
	To     Profile
}

// Store defines the interface for user and message persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, username string) (*User, error)
	GetUserCredentials(ctx context.Context, username string) (passwordHash string, err error)
	ListUsers(ctx context.Context) ([]Profile, error)
	UpdateLastLogin(ctx context.Context, username string) error

	// Messages
	CreateMessage(ctx context.Context, from, to, body string) (*Message, error)
	GetMessage(ctx context.Context, id int64) (*Message, error)
	GetMessageRecipient(ctx context.Context, id int64) (toUsername string, err error)
	MarkMessageRead(ctx context.Context, id int64) (*Message, error)
	MessagesTo(ctx context.Context, username string) ([]*Message, error)
	MessagesFrom(ctx context.Context, username string) ([]*Message, error)

	// Ping reports whether the database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
