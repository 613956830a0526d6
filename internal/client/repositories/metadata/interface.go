// Package metadata persists the local session between CLI runs: who signed
// in last and the refresh token that restores their session.
package metadata

import (
	"context"
)

const (
	KeyUsername     = "username"
	KeyRefreshToken = "refresh_token"
)

// Repository is a string key/value store. Missing keys read as "".
type Repository interface {
	GetString(ctx context.Context, key string) (string, error)
	// SetString stores value under key; an empty value removes the key.
	SetString(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
