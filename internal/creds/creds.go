// Package creds owns authentication credentials: the short-lived access
// token presented on the socket handshake and the refresh token exchanged
// for a new access token when the former expires. Nothing else in the
// client persists credentials.
package creds

import (
	"context"
	"errors"
)

var (
	// ErrInvalidRefresh indicates the refresh token was definitively
	// rejected. The session cannot recover without a fresh login.
	ErrInvalidRefresh = errors.New("creds: invalid refresh token")

	// ErrInvalidCredentials indicates a login or register attempt was
	// rejected (bad password, name taken).
	ErrInvalidCredentials = errors.New("creds: invalid credentials")

	// ErrUnavailable indicates the auth service is unreachable. The
	// operation may be retried later; existing credentials stay intact.
	ErrUnavailable = errors.New("creds: auth service unavailable")

	// ErrNoCredentials indicates no credentials are stored.
	ErrNoCredentials = errors.New("creds: no stored credentials")
)

// Credentials is an access/refresh token pair as returned by the auth API.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store holds the current credential pair. Exactly one refresh may be in
// flight at a time; implementations must serialize Refresh callers so two
// concurrent expiry events cannot each consume a one-shot refresh token.
type Store interface {
	// AccessToken returns the current access token, or "" if none is stored.
	AccessToken() string

	// Refresh exchanges the refresh token for a new access token and
	// returns it. Fails with ErrInvalidRefresh when the token is spent or
	// revoked, ErrUnavailable on network trouble.
	Refresh(ctx context.Context) (string, error)

	// Clear removes all stored credentials.
	Clear() error
}
