// Package auth implements local PIN accounts for a shared device: account
// creation, PIN sign-in with throttling, migration of pre-account data and a
// session state machine that hands out per-account storage.
//
// PINs are never stored; each account keeps the hex SHA-256 digest of
// "deviceSalt:email:pin". This is a convenience lock for a shared device and
// offers no protection against anyone who can read the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/idgen"
	"github.com/dmitrijs2005/fsrkeeper/internal/logging"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
	"github.com/go-playground/validator/v10"
)

// Service holds the account operations over one backing store.
type Service struct {
	backend  storage.Backend
	throttle *Throttle
	tokens   *tokenSigner
	validate *validator.Validate
	log      logging.Logger
	now      func() time.Time
	newID    idgen.Generator
}

type Option func(*Service)

func WithThrottle(t *Throttle) Option {
	return func(s *Service) { s.throttle = t }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Service) { s.newID = g }
}

// NewService returns a Service over backend. A nil backend is an
// environment error.
func NewService(backend storage.Backend, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEnvironment, storage.ErrNoBackend)
	}

	tokens, err := newTokenSigner()
	if err != nil {
		return nil, err
	}

	s := &Service{
		backend:  backend,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logging.Nop(),
		now:      time.Now,
		newID:    idgen.NewID,
	}
	for _, o := range opts {
		o(s)
	}
	if s.throttle == nil {
		s.throttle = NewThrottle(DefaultMaxAttempts, DefaultLockoutDuration)
	}
	return s, nil
}

func (s *Service) Backend() storage.Backend { return s.backend }

// readUsers treats an unreadable users list as empty, with a warning.
// Anything that writes the list back must use loadUsers instead.
func (s *Service) readUsers(ctx context.Context, b storage.Backend) ([]User, error) {
	users, err := loadUsers(ctx, b)
	if errors.Is(err, errCorruptUsers) {
		s.log.Warn(ctx, "ignoring unreadable users list", "error", err)
		return users, nil
	}
	return users, err
}

// Users returns every account on the device.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	return s.readUsers(ctx, s.backend)
}

// FindUser returns the account with the given id.
func (s *Service) FindUser(ctx context.Context, id string) (User, error) {
	users, err := s.readUsers(ctx, s.backend)
	if err != nil {
		return User{}, err
	}
	i, ok := findByID(users, id)
	if !ok {
		return User{}, ErrNotFound
	}
	return users[i], nil
}

// CreateLocalAccount validates in, stores a new account and returns it along
// with the updated users list.
func (s *Service) CreateLocalAccount(ctx context.Context, in AccountInput) (User, []User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.PIN = strings.TrimSpace(in.PIN)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return User{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	salt, err := EnsureDeviceSalt(ctx, s.backend)
	if err != nil {
		return User{}, nil, err
	}

	users, err := loadUsers(ctx, s.backend)
	if err != nil {
		return User{}, nil, err
	}
	if _, dup := findByEmail(users, in.Email); dup {
		return User{}, nil, ErrDuplicateEmail
	}

	name := in.Name
	if name == "" {
		name, _, _ = strings.Cut(in.Email, "@")
	}
	now := s.timestamp()
	u := User{
		ID:          s.newID(),
		Email:       in.Email,
		Name:        name,
		PinHash:     HashPin(salt, in.Email, in.PIN),
		Salt:        salt,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	users = append(users, u)
	if err := saveUsers(ctx, s.backend, users); err != nil {
		return User{}, nil, err
	}

	s.throttle.Reset(in.Email)
	s.log.Info(ctx, "local account created", "user_id", u.ID)
	return u, cloneUsers(users), nil
}

// SignInWithPin checks pin for the account registered under email. Every
// failure, including an unknown email, counts toward the throttle.
func (s *Service) SignInWithPin(ctx context.Context, email, pin string) (User, []User, error) {
	email = NormalizeEmail(email)
	now := s.now()

	if retryAt, locked := s.throttle.Check(email, now); locked {
		return User{}, nil, &ThrottledError{RetryAt: retryAt}
	}

	salt, err := EnsureDeviceSalt(ctx, s.backend)
	if err != nil {
		return User{}, nil, err
	}
	users, err := loadUsers(ctx, s.backend)
	if err != nil {
		return User{}, nil, err
	}

	i, found := findByEmail(users, email)
	if !found {
		// keep the work comparable to the found path
		_ = HashPin(salt, email, pin)
		return User{}, nil, s.fail(ctx, email, now, ErrNotFound)
	}
	if !pinMatches(users[i], salt, pin) {
		return User{}, nil, s.fail(ctx, email, now, ErrInvalidPin)
	}

	s.throttle.Reset(email)
	users[i].LastLoginAt = s.timestamp()
	if err := saveUsers(ctx, s.backend, users); err != nil {
		return User{}, nil, err
	}
	s.log.Info(ctx, "signed in", "user_id", users[i].ID)
	return users[i], cloneUsers(users), nil
}

// timestamp is the current time as stored on account records.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) fail(ctx context.Context, email string, now time.Time, cause error) error {
	if retryAt, locked := s.throttle.Fail(email, now); locked {
		s.log.Warn(ctx, "sign-in throttled", "retry_at", retryAt)
		return &ThrottledError{RetryAt: retryAt}
	}
	return cause
}
