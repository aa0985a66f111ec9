package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_LocksAfterMaxAttempts(t *testing.T) {
	th := NewThrottle(3, 10*time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, locked := th.Fail("a", now)
	assert.False(t, locked)
	_, locked = th.Fail("a", now)
	assert.False(t, locked)
	until, locked := th.Fail("a", now)
	assert.True(t, locked)
	assert.Equal(t, now.Add(10*time.Second), until)

	retry, locked := th.Check("a", now.Add(9*time.Second))
	assert.True(t, locked)
	assert.Equal(t, until, retry)

	_, locked = th.Check("b", now)
	assert.False(t, locked, "other emails are unaffected")
}

func TestThrottle_ExpiryResetsCounter(t *testing.T) {
	th := NewThrottle(3, 10*time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		th.Fail("a", now)
	}

	_, locked := th.Check("a", now.Add(10*time.Second))
	assert.False(t, locked)
	assert.Equal(t, 0, th.Attempts("a"))

	_, locked = th.Fail("a", now.Add(11*time.Second))
	assert.False(t, locked, "a fresh window starts after expiry")
}

func TestThrottle_Reset(t *testing.T) {
	th := NewThrottle(3, time.Second)
	now := time.Now()
	th.Fail("a", now)
	th.Fail("a", now)
	th.Reset("a")
	assert.Equal(t, 0, th.Attempts("a"))

	_, locked := th.Fail("a", now)
	assert.False(t, locked)
}

func TestNewThrottle_Defaults(t *testing.T) {
	th := NewThrottle(0, 0)
	assert.Equal(t, DefaultMaxAttempts, th.maxAttempts)
	assert.Equal(t, DefaultLockoutDuration, th.lockout)
}
