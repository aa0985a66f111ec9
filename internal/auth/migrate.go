package auth

import (
	"context"

	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

// The account that receives data written before accounts existed.
const (
	DefaultUserID    = "local-default"
	DefaultUserEmail = "local@device"
	DefaultUserName  = "Local user"
	DefaultUserPIN   = "000000"
)

// MigrationResult describes what MigrateLegacyData did.
type MigrationResult struct {
	Migrated           bool
	CreatedDefaultUser bool
	MovedKeys          []string
	DiscardedKeys      []string
}

// MigrateLegacyData moves unscoped fsr.<name> keys into the default account.
//
// When any account already owns data the legacy keys are stale and are
// deleted without copying. Otherwise each key is copied to its scoped form
// unless that already exists, the legacy key is deleted, the default account
// is created if missing and, when no current user is recorded, it becomes the
// current user. Running it again finds nothing to do.
func (s *Service) MigrateLegacyData(ctx context.Context) (MigrationResult, error) {
	var res MigrationResult

	legacy, err := storage.ListGlobalKeys(ctx, s.backend)
	if err != nil {
		return res, err
	}
	if len(legacy) == 0 {
		return res, nil
	}

	scoped, err := storage.HasUserScopedData(ctx, s.backend)
	if err != nil {
		return res, err
	}
	if scoped {
		err := storage.Batch(ctx, s.backend, func(ctx context.Context, b storage.Backend) error {
			for _, k := range legacy {
				if err := b.RemoveItem(ctx, k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return MigrationResult{}, err
		}
		res.DiscardedKeys = legacy
		s.log.Info(ctx, "discarded stale legacy keys", "count", len(legacy))
		return res, nil
	}

	salt, err := EnsureDeviceSalt(ctx, s.backend)
	if err != nil {
		return res, err
	}

	err = storage.Batch(ctx, s.backend, func(ctx context.Context, b storage.Backend) error {
		users, err := loadUsers(ctx, b)
		if err != nil {
			return err
		}
		if _, ok := findByID(users, DefaultUserID); !ok {
			users = append(users, s.defaultUser(salt))
			if err := saveUsers(ctx, b, users); err != nil {
				return err
			}
			res.CreatedDefaultUser = true
		}

		for _, k := range legacy {
			target := storage.ToScopedKey(k, DefaultUserID)
			_, exists, err := b.GetItem(ctx, target)
			if err != nil {
				return err
			}
			if !exists {
				v, ok, err := b.GetItem(ctx, k)
				if err != nil {
					return err
				}
				if ok {
					if err := b.SetItem(ctx, target, v); err != nil {
						return err
					}
					res.MovedKeys = append(res.MovedKeys, k)
				}
			}
			if err := b.RemoveItem(ctx, k); err != nil {
				return err
			}
		}

		current, ok, err := b.GetItem(ctx, storage.KeyCurrentUserID)
		if err != nil {
			return err
		}
		if !ok || current == "" {
			return b.SetItem(ctx, storage.KeyCurrentUserID, DefaultUserID)
		}
		return nil
	})
	if err != nil {
		return MigrationResult{}, err
	}

	res.Migrated = true
	s.log.Info(ctx, "migrated legacy data",
		"moved", len(res.MovedKeys), "created_default_user", res.CreatedDefaultUser)
	return res, nil
}

func (s *Service) defaultUser(salt string) User {
	now := s.timestamp()
	return User{
		ID:          DefaultUserID,
		Email:       DefaultUserEmail,
		Name:        DefaultUserName,
		PinHash:     HashPin(salt, DefaultUserEmail, DefaultUserPIN),
		Salt:        salt,
		CreatedAt:   now,
		LastLoginAt: now,
	}
}
