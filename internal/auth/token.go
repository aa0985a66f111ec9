package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
	"github.com/golang-jwt/jwt/v5"
)

const tokenSecretBytes = 32

// Claims identifies the account a session token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// tokenSigner issues and verifies session tokens. The secret is random per
// process, so tokens never outlive a restart.
type tokenSigner struct {
	secret []byte

	mu      sync.Mutex
	revoked map[string]struct{}
}

func newTokenSigner() (*tokenSigner, error) {
	secret, err := common.GenerateRandBytes(tokenSecretBytes)
	if err != nil {
		return nil, err
	}
	return &tokenSigner{secret: secret, revoked: make(map[string]struct{})}, nil
}

func (t *tokenSigner) generate(userID, tokenID string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       tokenID,
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(t.secret)
}

func (t *tokenSigner) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *tokenSigner) revoke(tokenID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[tokenID] = struct{}{}
}

// IssueToken returns a session token for u.
func (s *Service) IssueToken(u User) (string, error) {
	if u.ID == "" {
		return "", ErrInvalidToken
	}
	return s.tokens.generate(u.ID, s.newID(), s.now())
}

// RevokeToken makes token unusable for the rest of the process lifetime.
// Unparseable tokens are ignored.
func (s *Service) RevokeToken(token string) {
	claims, err := s.tokens.parse(token)
	if err != nil {
		return
	}
	s.tokens.revoke(claims.ID)
}

// ScopedStorage returns the storage handle of the account token was issued
// for. The account must still exist.
func (s *Service) ScopedStorage(ctx context.Context, token string) (*storage.Scoped, error) {
	claims, err := s.tokens.parse(token)
	if err != nil {
		return nil, err
	}

	users, err := s.readUsers(ctx, s.backend)
	if err != nil {
		return nil, err
	}
	if _, ok := findByID(users, claims.UserID); !ok {
		return nil, ErrInvalidToken
	}
	return storage.NewScoped(claims.UserID, s.backend)
}
