package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("user-%d", n)
	}
}

func newTestService(t *testing.T, b storage.Backend, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	all := append([]Option{WithClock(clock.Now), WithIDGenerator(seqIDs())}, opts...)
	svc, err := NewService(b, all...)
	require.NoError(t, err)
	return svc, clock
}

func mustCreate(t *testing.T, svc *Service, email, pin string) User {
	t.Helper()
	u, _, err := svc.CreateLocalAccount(context.Background(), AccountInput{Email: email, PIN: pin})
	require.NoError(t, err)
	return u
}
