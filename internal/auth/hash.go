package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

const deviceSaltBytes = 16

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPin is the hex SHA-256 digest of "salt:normalizedEmail:trimmedPin".
func HashPin(deviceSalt, email, pin string) string {
	sum := sha256.Sum256([]byte(deviceSalt + ":" + NormalizeEmail(email) + ":" + strings.TrimSpace(pin)))
	return hex.EncodeToString(sum[:])
}

func pinMatches(u User, deviceSalt, pin string) bool {
	salt := u.Salt
	if salt == "" {
		salt = deviceSalt
	}
	candidate := HashPin(salt, u.Email, pin)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(u.PinHash)) == 1
}

// EnsureDeviceSalt returns the device salt, creating and persisting a fresh
// one on first use.
func EnsureDeviceSalt(ctx context.Context, b storage.Backend) (string, error) {
	salt, ok, err := b.GetItem(ctx, storage.KeyDeviceSalt)
	if err != nil {
		return "", err
	}
	if ok && salt != "" {
		return salt, nil
	}

	raw, err := common.GenerateRandBytes(deviceSaltBytes)
	if err != nil {
		return "", err
	}
	salt = base64.StdEncoding.EncodeToString(raw)
	if err := b.SetItem(ctx, storage.KeyDeviceSalt, salt); err != nil {
		return "", err
	}
	return salt, nil
}
