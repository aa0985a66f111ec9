package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value at key into v. It reports false when the key is
// absent; v is then left untouched.
func GetJSON(ctx context.Context, b Backend, key string, v any) (bool, error) {
	raw, ok, err := b.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.SetItem(ctx, key, string(data))
}
