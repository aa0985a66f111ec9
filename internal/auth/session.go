package auth

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

// Status is the state of a Session.
type Status string

const (
	StatusLoading   Status = "loading"
	StatusSignedOut Status = "signedOut"
	StatusReady     Status = "ready"
	StatusLocked    Status = "locked"
)

// Session tracks who is using the device.
//
//	loading   --Start-->                    signedOut | ready
//	signedOut --SignIn/CreateAccount-->     ready
//	ready     --Lock-->                     locked
//	locked    --SignIn (same account)-->    ready
//	ready|locked --SignOut/SwitchUser-->    signedOut
//
// A scoped storage handle exists only while the session is ready.
type Session struct {
	svc *Service

	mu       sync.Mutex
	status   Status
	users    []User
	current  *User
	remember bool
	token    string
	scoped   *storage.Scoped
}

func NewSession(svc *Service) *Session {
	return &Session{svc: svc, status: StatusLoading, users: []User{}}
}

// Start migrates legacy data, loads the users list and restores the
// remembered account, if any.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusLoading {
		return ErrInvalidState
	}

	if _, err := s.svc.MigrateLegacyData(ctx); err != nil {
		return err
	}
	users, err := s.svc.Users(ctx)
	if err != nil {
		return err
	}
	s.users = users

	backend := s.svc.Backend()
	id, ok, err := backend.GetItem(ctx, storage.KeyCurrentUserID)
	if err != nil {
		return err
	}
	if ok && id != "" {
		if i, found := findByID(users, id); found {
			return s.activate(ctx, users[i], true)
		}
		s.svc.log.Warn(ctx, "remembered user no longer exists", "user_id", id)
		if err := backend.RemoveItem(ctx, storage.KeyCurrentUserID); err != nil {
			return err
		}
	}
	s.status = StatusSignedOut
	return nil
}

// SignIn authenticates email/pin. While locked only the locked account may
// sign back in. With remember set the account is restored on the next Start.
func (s *Session) SignIn(ctx context.Context, email, pin string, remember bool) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusSignedOut:
	case StatusLocked:
		if NormalizeEmail(email) != s.current.Email {
			return User{}, ErrLockedUserMismatch
		}
	default:
		return User{}, ErrInvalidState
	}

	u, users, err := s.svc.SignInWithPin(ctx, email, pin)
	if err != nil {
		return User{}, err
	}
	s.users = users
	if err := s.activate(ctx, u, remember); err != nil {
		return User{}, err
	}
	return u, nil
}

// CreateAccount creates an account and signs straight into it.
func (s *Session) CreateAccount(ctx context.Context, in AccountInput, remember bool) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusSignedOut {
		return User{}, ErrInvalidState
	}

	u, users, err := s.svc.CreateLocalAccount(ctx, in)
	if err != nil {
		return User{}, err
	}
	s.users = users
	if err := s.activate(ctx, u, remember); err != nil {
		return User{}, err
	}
	return u, nil
}

// Lock keeps the current account but drops its storage handle until the PIN
// is entered again. The remembered account is kept only if remember was set
// at sign-in.
func (s *Session) Lock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusReady {
		return ErrInvalidState
	}
	if !s.remember {
		if err := s.svc.Backend().RemoveItem(ctx, storage.KeyCurrentUserID); err != nil {
			return err
		}
	}
	s.dropToken()
	s.status = StatusLocked
	return nil
}

// SignOut forgets the current account.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOut(ctx)
}

// SwitchUser signs out so another account can sign in.
func (s *Session) SwitchUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOut(ctx)
}

func (s *Session) signOut(ctx context.Context) error {
	if s.status != StatusReady && s.status != StatusLocked {
		return ErrInvalidState
	}
	if err := s.svc.Backend().RemoveItem(ctx, storage.KeyCurrentUserID); err != nil {
		return err
	}
	s.dropToken()
	s.current = nil
	s.remember = false
	s.status = StatusSignedOut
	return nil
}

func (s *Session) activate(ctx context.Context, u User, remember bool) error {
	token, err := s.svc.IssueToken(u)
	if err != nil {
		return err
	}
	scoped, err := s.svc.ScopedStorage(ctx, token)
	if err != nil {
		return err
	}

	backend := s.svc.Backend()
	if remember {
		err = backend.SetItem(ctx, storage.KeyCurrentUserID, u.ID)
	} else {
		err = backend.RemoveItem(ctx, storage.KeyCurrentUserID)
	}
	if err != nil {
		s.svc.RevokeToken(token)
		return err
	}

	s.dropToken()
	s.current = &u
	s.remember = remember
	s.token = token
	s.scoped = scoped
	s.status = StatusReady
	return nil
}

func (s *Session) dropToken() {
	if s.token != "" {
		s.svc.RevokeToken(s.token)
	}
	s.token = ""
	s.scoped = nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUsers(s.users)
}

// CurrentUser returns the signed-in or locked account.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// ScopedStorage returns the current account's storage. It is nil unless the
// session is ready.
func (s *Session) ScopedStorage() *storage.Scoped {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoped
}

// Token returns the current session token, empty unless ready.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// RefreshUsers reloads the users list from storage.
func (s *Session) RefreshUsers(ctx context.Context) ([]User, error) {
	users, err := s.svc.Users(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return cloneUsers(users), nil
}
