package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

// User is a local account record as stored in the device users list.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PinHash     string    `json:"pinHash"`
	Salt        string    `json:"salt"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// UnmarshalJSON accepts createdAt/lastLoginAt as RFC 3339 strings or epoch
// milliseconds. Values in any other shape decode as the zero time.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		CreatedAt   json.RawMessage `json:"createdAt"`
		LastLoginAt json.RawMessage `json:"lastLoginAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	u.CreatedAt = parseStamp(raw.CreatedAt)
	u.LastLoginAt = parseStamp(raw.LastLoginAt)
	return nil
}

func parseStamp(raw json.RawMessage) time.Time {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return time.Time{}
	}
	switch x := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x)); err == nil {
			return t.UTC()
		}
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return time.UnixMilli(int64(x)).UTC()
		}
	}
	return time.Time{}
}

// AccountInput is what a person types to create an account.
type AccountInput struct {
	Email string `validate:"required,email"`
	PIN   string `validate:"required,number,min=4,max=12"`
	Name  string `validate:"max=120"`
}

func findByEmail(users []User, email string) (int, bool) {
	for i, u := range users {
		if u.Email == email {
			return i, true
		}
	}
	return -1, false
}

func findByID(users []User, id string) (int, bool) {
	for i, u := range users {
		if u.ID == id {
			return i, true
		}
	}
	return -1, false
}

var errCorruptUsers = errors.New("users list is unreadable")

// loadUsers reads the users list from b. A list that cannot be decoded yields
// an empty slice and an error wrapping errCorruptUsers.
func loadUsers(ctx context.Context, b storage.Backend) ([]User, error) {
	raw, ok, err := b.GetItem(ctx, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	users := []User{}
	if !ok {
		return users, nil
	}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return []User{}, fmt.Errorf("%w: %v", errCorruptUsers, err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func saveUsers(ctx context.Context, b storage.Backend, users []User) error {
	return storage.SetJSON(ctx, b, storage.KeyUsers, users)
}

func cloneUsers(users []User) []User {
	return append([]User{}, users...)
}
