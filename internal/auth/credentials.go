// ABOUTME: Credential providers injected into the API client.
// ABOUTME: Tokens come from configuration or the environment, never from ambient globals.

package auth

import (
	"context"
	"os"
)

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// EnvToken reads the token from an environment variable on every request,
// so rotating the variable takes effect without a restart.
type EnvToken string

func (e EnvToken) Token(ctx context.Context) (string, error) {
	return os.Getenv(string(e)), nil
}

// TokenFunc adapts a function into a credential provider.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
