package auth

import (
	"sync"
	"time"
)

const (
	DefaultMaxAttempts     = 3
	DefaultLockoutDuration = 10 * time.Second
)

type attemptState struct {
	attempts    int
	lockedUntil time.Time
}

// Throttle counts consecutive sign-in failures per normalized email. After
// maxAttempts failures the email is locked for the lockout duration. State
// lives in memory only, so a restart clears it. Nothing fires when a lockout
// ends; the next Check notices and resets the counter.
type Throttle struct {
	mu          sync.Mutex
	maxAttempts int
	lockout     time.Duration
	state       map[string]*attemptState
}

func NewThrottle(maxAttempts int, lockout time.Duration) *Throttle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockoutDuration
	}
	return &Throttle{maxAttempts: maxAttempts, lockout: lockout, state: make(map[string]*attemptState)}
}

// Check reports whether email is locked at now and until when.
func (t *Throttle) Check(email string, now time.Time) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.state[email]
	if !ok || st.lockedUntil.IsZero() {
		return time.Time{}, false
	}
	if now.Before(st.lockedUntil) {
		return st.lockedUntil, true
	}
	delete(t.state, email)
	return time.Time{}, false
}

// Fail records a failure. When it is the one that triggers a lockout, the
// unlock time is returned with true.
func (t *Throttle) Fail(email string, now time.Time) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.state[email]
	if !ok {
		st = &attemptState{}
		t.state[email] = st
	}
	st.attempts++
	if st.attempts >= t.maxAttempts {
		st.lockedUntil = now.Add(t.lockout)
		return st.lockedUntil, true
	}
	return time.Time{}, false
}

func (t *Throttle) Reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.state, email)
}

// Attempts returns the failures recorded for email.
func (t *Throttle) Attempts(email string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.state[email]; ok {
		return st.attempts
	}
	return 0
}
