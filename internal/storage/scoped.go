package storage

import (
	"context"
	"strings"
)

const Prefix = "fsr"

// Reserved keys shared by every account on the device.
const (
	KeyUsers         = Prefix + ".users"
	KeyDeviceSalt    = Prefix + ".deviceSalt"
	KeyCurrentUserID = Prefix + ".currentUserId"
)

// Per-account keys, given in their unscoped form.
const (
	KeyReports   = Prefix + ".reports"
	KeyTripTypes = Prefix + ".tripTypes"
)

func isReserved(key string) bool {
	switch key {
	case KeyUsers, KeyDeviceSalt, KeyCurrentUserID:
		return true
	}
	return false
}

func segments(key string) int {
	return strings.Count(key, ".") + 1
}

func hasPrefix(key string) bool {
	return strings.HasPrefix(key, Prefix+".")
}

// ToScopedKey inserts userID as the second segment of key. Keys outside the
// prefix, reserved keys and keys with three or more segments are returned
// unchanged.
func ToScopedKey(key, userID string) string {
	if !hasPrefix(key) || isReserved(key) || segments(key) >= 3 {
		return key
	}
	return Prefix + "." + userID + "." + strings.TrimPrefix(key, Prefix+".")
}

// Scoped is a Backend view that namespaces every key for one account.
//
// Nothing stops a caller from building a handle for someone else's id; the
// auth package hands these out only against a valid session token.
type Scoped struct {
	userID string
	raw    Backend
}

// NewScoped returns a handle for userID over backing.
func NewScoped(userID string, backing Backend) (*Scoped, error) {
	if backing == nil {
		return nil, ErrNoBackend
	}
	if userID == "" {
		return nil, ErrNoUserID
	}
	return &Scoped{userID: userID, raw: backing}, nil
}

func (s *Scoped) UserID() string { return s.userID }

// Raw exposes the unscoped backing store for migration.
func (s *Scoped) Raw() Backend { return s.raw }

func (s *Scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.raw.GetItem(ctx, ToScopedKey(key, s.userID))
}

func (s *Scoped) SetItem(ctx context.Context, key, value string) error {
	return s.raw.SetItem(ctx, ToScopedKey(key, s.userID), value)
}

func (s *Scoped) RemoveItem(ctx context.Context, key string) error {
	return s.raw.RemoveItem(ctx, ToScopedKey(key, s.userID))
}

// Clear removes only the keys inside this account's scope.
func (s *Scoped) Clear(ctx context.Context) error {
	keys, err := Keys(ctx, s.raw)
	if err != nil {
		return err
	}
	own := Prefix + "." + s.userID + "."
	for _, k := range keys {
		if !strings.HasPrefix(k, own) {
			continue
		}
		if err := s.raw.RemoveItem(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Key and Length enumerate the whole backing store.
func (s *Scoped) Key(ctx context.Context, index int) (string, bool, error) {
	return s.raw.Key(ctx, index)
}

func (s *Scoped) Length(ctx context.Context) (int, error) {
	return s.raw.Length(ctx)
}

// ListGlobalKeys returns the unscoped two-segment keys under the prefix,
// excluding reserved keys. These are the legacy keys awaiting migration.
func ListGlobalKeys(ctx context.Context, backing Backend) ([]string, error) {
	keys, err := Keys(ctx, backing)
	if err != nil {
		return nil, err
	}
	var legacy []string
	for _, k := range keys {
		if hasPrefix(k) && segments(k) == 2 && !isReserved(k) {
			legacy = append(legacy, k)
		}
	}
	return legacy, nil
}

// HasUserScopedData reports whether any key already belongs to an account.
func HasUserScopedData(ctx context.Context, backing Backend) (bool, error) {
	keys, err := Keys(ctx, backing)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if hasPrefix(k) && segments(k) >= 3 {
			return true, nil
		}
	}
	return false, nil
}
