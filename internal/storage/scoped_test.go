package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToScopedKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"fsr.reports", "fsr.user-a.reports"},
		{"fsr.tripTypes", "fsr.user-a.tripTypes"},
		{"fsr.users", "fsr.users"},
		{"fsr.deviceSalt", "fsr.deviceSalt"},
		{"fsr.currentUserId", "fsr.currentUserId"},
		{"fsr.user-b.reports", "fsr.user-b.reports"},
		{"app.settings", "app.settings"},
		{"fsrreports", "fsrreports"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ToScopedKey(tt.key, "user-a"))
		})
	}
}

func TestNewScoped_Errors(t *testing.T) {
	_, err := NewScoped("u1", nil)
	require.ErrorIs(t, err, ErrNoBackend)

	_, err = NewScoped("", NewMemoryBackend())
	require.ErrorIs(t, err, ErrNoUserID)
}

func TestScoped_ReadWriteThroughScope(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s, err := NewScoped("u1", mem)
	require.NoError(t, err)

	require.NoError(t, s.SetItem(ctx, KeyReports, "[1]"))
	require.NoError(t, s.SetItem(ctx, KeyUsers, "[]"))
	require.NoError(t, s.SetItem(ctx, "app.theme", "dark"))

	v, ok, err := mem.GetItem(ctx, "fsr.u1.reports")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[1]", v)

	_, ok, _ = mem.GetItem(ctx, "fsr.users")
	assert.True(t, ok, "reserved key must not be scoped")
	_, ok, _ = mem.GetItem(ctx, "app.theme")
	assert.True(t, ok, "keys outside the prefix pass through")

	v, ok, err = s.GetItem(ctx, KeyReports)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[1]", v)

	require.NoError(t, s.RemoveItem(ctx, KeyReports))
	_, ok, _ = mem.GetItem(ctx, "fsr.u1.reports")
	assert.False(t, ok)

	assert.Same(t, Backend(mem), s.Raw())
	assert.Equal(t, "u1", s.UserID())
}

func TestScoped_ClearOnlyOwnKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	a, _ := NewScoped("a", mem)
	b, _ := NewScoped("b", mem)

	require.NoError(t, a.SetItem(ctx, KeyReports, "a"))
	require.NoError(t, a.SetItem(ctx, KeyTripTypes, "a"))
	require.NoError(t, b.SetItem(ctx, KeyReports, "b"))
	require.NoError(t, mem.SetItem(ctx, KeyUsers, "[]"))

	require.NoError(t, a.Clear(ctx))

	keys, err := Keys(ctx, mem)
	require.NoError(t, err)
	assert.Equal(t, []string{"fsr.b.reports", "fsr.users"}, keys)

	n, err := a.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	k, ok, err := a.Key(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fsr.b.reports", k)
}

func TestListGlobalKeys_And_HasUserScopedData(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()

	for k, v := range map[string]string{
		"fsr.reports":       "[]",
		"fsr.tripTypes":     "[]",
		"fsr.users":         "[]",
		"fsr.deviceSalt":    "salt",
		"fsr.currentUserId": "x",
		"other.key":         "1",
	} {
		require.NoError(t, mem.SetItem(ctx, k, v))
	}

	legacy, err := ListGlobalKeys(ctx, mem)
	require.NoError(t, err)
	assert.Equal(t, []string{"fsr.reports", "fsr.tripTypes"}, legacy)

	has, err := HasUserScopedData(ctx, mem)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, mem.SetItem(ctx, "fsr.u1.reports", "[]"))
	has, err = HasUserScopedData(ctx, mem)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()

	var got []string
	ok, err := GetJSON(ctx, mem, KeyTripTypes, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, mem, KeyTripTypes, []string{"install", "repair"}))
	ok, err = GetJSON(ctx, mem, KeyTripTypes, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"install", "repair"}, got)

	require.NoError(t, mem.SetItem(ctx, KeyReports, "{not json"))
	_, err = GetJSON(ctx, mem, KeyReports, &got)
	assert.Error(t, err)
}
