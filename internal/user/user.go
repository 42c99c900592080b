// Package user stores PixelPad accounts.
//
// Two backends share the same semantics: a JSON document rewritten
// atomically on every change, and a SQLite database. Passwords are kept as
// bcrypt hashes of their SHA-256 digest and never leave the store.
package user

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned when no user matches a phone/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingCredentials is returned when phone or password is blank.
	ErrMissingCredentials = errors.New("phone and password required")
)

// User is the public view of an account.
type User struct {
	ID         int    `json:"id"`
	Phone      string `json:"phone"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Birthday   string `json:"birthday"`
	MBTI       string `json:"mbti"`
	AvatarMode string `json:"avatarMode"`
}

// Update lists profile fields to change. Nil fields are left alone.
type Update struct {
	Phone      *string
	Username   *string
	Password   *string
	Email      *string
	Birthday   *string
	MBTI       *string
	AvatarMode *string
}

// apply copies the non-nil profile fields onto u. Password is handled by the store.
func (up Update) apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Phone, up.Phone)
	set(&u.Username, up.Username)
	set(&u.Email, up.Email)
	set(&u.Birthday, up.Birthday)
	set(&u.MBTI, up.MBTI)
	set(&u.AvatarMode, up.AvatarMode)
}

// Store is implemented by every account backend.
type Store interface {
	// Register creates a user with default profile fields.
	Register(ctx context.Context, phone, password string) (*User, error)
	// Authenticate returns the first user whose phone and password match.
	Authenticate(ctx context.Context, phone, password string) (*User, error)
	// Get returns the user with the given id.
	Get(ctx context.Context, id int) (*User, error)
	// Update applies a partial profile change.
	Update(ctx context.Context, id int, up Update) (*User, error)
	// Close releases backend resources.
	Close() error
}

// Options configures a store.
type Options struct {
	// HashCost is the bcrypt cost for new password hashes.
	// If zero, bcrypt.DefaultCost is used.
	HashCost int

	// Logger receives store diagnostics. If nil, logging is discarded.
	Logger hclog.Logger
}

func (o Options) withDefaults() Options {
	if o.HashCost == 0 {
		o.HashCost = bcrypt.DefaultCost
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}

// seedUser is the account present in every fresh store.
var seedUser = User{
	ID:         1,
	Phone:      "13800000000",
	Username:   "PixelPad",
	Email:      "pixelpad@example.com",
	Birthday:   "2006-11-15",
	MBTI:       "INFP",
	AvatarMode: "logo",
}

const seedPassword = "123456"

// newUser returns the default profile for a freshly registered phone number.
func newUser(id int, phone string) User {
	suffix := []rune(phone)
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return User{
		ID:         id,
		Phone:      phone,
		Username:   "User" + string(suffix),
		Email:      "",
		Birthday:   "2000-01-01",
		MBTI:       "",
		AvatarMode: "logo",
	}
}

// normaliseCredentials trims phone and password and rejects blanks.
func normaliseCredentials(phone, password string) (string, string, error) {
	phone = strings.TrimSpace(phone)
	password = strings.TrimSpace(password)
	if phone == "" || password == "" {
		return "", "", ErrMissingCredentials
	}
	return phone, password, nil
}

// passwordKey digests a password before bcrypt, which rejects inputs over
// 72 bytes. The base64 digest is 44 bytes for any password length.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordKey(password)) == nil
}

// Open opens the store for the named backend ("json" or "sqlite").
func Open(ctx context.Context, backend, path string, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case "json":
		s, err = OpenJSONStore(path, opts)
	case "sqlite":
		s, err = OpenSQLiteStore(ctx, path, opts)
	default:
		return nil, fmt.Errorf("unsupported user store backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s user store: %w", backend, err)
	}
	return s, nil
}
