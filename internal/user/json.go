package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
)

// record is a stored account.
type record struct {
	User
	PasswordHash string `json:"password_hash,omitempty"`
	// Password holds a legacy plaintext password; it is hashed on load.
	Password string `json:"password,omitempty"`
}

// document is the on-disk layout of the JSON store.
type document struct {
	NextID int                `json:"next_id"`
	Users  map[string]*record `json:"users"`
}

// JSONStore keeps accounts in a single JSON file.
type JSONStore struct {
	mu     sync.Mutex
	path   string
	opts   Options
	users  map[int]*record
	nextID int
}

var _ Store = (*JSONStore)(nil)

// OpenJSONStore loads the store at path, seeding it when the file is missing
// or unreadable, and writes it back so the file always exists afterwards.
func OpenJSONStore(path string, opts Options) (*JSONStore, error) {
	s := &JSONStore{path: path, opts: opts.withDefaults()}

	if err := s.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.opts.Logger.Warn("user store unreadable, reseeding", "path", path, "error", err)
		}
		if err := s.seed(); err != nil {
			return nil, err
		}
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) seed() error {
	hash, err := hashPassword(seedPassword, s.opts.HashCost)
	if err != nil {
		return err
	}
	s.users = map[int]*record{
		seedUser.ID: {User: seedUser, PasswordHash: hash},
	}
	s.nextID = seedUser.ID + 1
	return nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse user store: %w", err)
	}

	users := make(map[int]*record, len(doc.Users))
	maxID := 0
	for key, rec := range doc.Users {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", key, err)
		}
		if rec == nil {
			continue
		}
		rec.ID = id
		if rec.PasswordHash == "" && rec.Password != "" {
			hash, err := hashPassword(rec.Password, s.opts.HashCost)
			if err != nil {
				return err
			}
			rec.PasswordHash = hash
			s.opts.Logger.Info("migrated plaintext password", "user", id)
		}
		rec.Password = ""
		users[id] = rec
		maxID = max(maxID, id)
	}

	s.users = users
	s.nextID = doc.NextID
	if s.nextID <= maxID {
		s.nextID = maxID + 1
	}
	return nil
}

// save writes the current state to disk.
func (s *JSONStore) save() error {
	return s.write(s.users, s.nextID)
}

// write persists users and nextID to a temporary file and renames it into
// place. The in-memory state is not touched.
func (s *JSONStore) write(users map[int]*record, nextID int) error {
	doc := document{NextID: nextID, Users: make(map[string]*record, len(users))}
	for id, rec := range users {
		doc.Users[strconv.Itoa(id)] = rec
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Data directory needs standard permissions
			return fmt.Errorf("failed to create user store directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace user store: %w", err)
	}
	return nil
}

// commit persists users with rec stored under its id, and installs the new
// state only once it is on disk.
func (s *JSONStore) commit(rec *record, nextID int) error {
	users := maps.Clone(s.users)
	users[rec.ID] = rec
	if err := s.write(users, nextID); err != nil {
		return err
	}
	s.users = users
	s.nextID = nextID
	return nil
}

// Register creates a user with default profile fields.
func (s *JSONStore) Register(_ context.Context, phone, password string) (*User, error) {
	phone, password, err := normaliseCredentials(phone, password)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.opts.HashCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &record{User: newUser(s.nextID, phone), PasswordHash: hash}
	if err := s.commit(rec, s.nextID+1); err != nil {
		return nil, err
	}

	s.opts.Logger.Debug("registered user", "user", rec.ID)
	u := rec.User
	return &u, nil
}

// Authenticate returns the lowest-id user whose phone and password match.
func (s *JSONStore) Authenticate(_ context.Context, phone, password string) (*User, error) {
	phone, password, err := normaliseCredentials(phone, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var candidates []record
	for _, rec := range s.users {
		if rec.Phone == phone {
			candidates = append(candidates, *rec)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(candidates, func(a, b record) int { return a.ID - b.ID })
	for _, rec := range candidates {
		if checkPassword(rec.PasswordHash, password) {
			u := rec.User
			return &u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Get returns the user with the given id.
func (s *JSONStore) Get(_ context.Context, id int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := rec.User
	return &u, nil
}

// Update applies a partial profile change and persists it.
func (s *JSONStore) Update(_ context.Context, id int, up Update) (*User, error) {
	var hash string
	if up.Password != nil {
		var err error
		if hash, err = hashPassword(*up.Password, s.opts.HashCost); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := *cur
	up.apply(&next.User)
	if hash != "" {
		next.PasswordHash = hash
	}
	if err := s.commit(&next, s.nextID); err != nil {
		return nil, err
	}

	u := next.User
	return &u, nil
}

// Close is a no-op; every change is already on disk.
func (s *JSONStore) Close() error {
	return nil
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}
