package creds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// API is the HTTP client for the server's auth endpoints. It is consumed
// at session bootstrap (register/login) and by stores on token refresh;
// the websocket session itself never talks HTTP.
type API struct {
	baseURL string
	client  *http.Client
}

// NewAPI creates an auth API client for the given base URL
// (e.g. "https://example.com/api/auth").
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type credentialRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Refresh  string `json:"refreshToken,omitempty"`
}

type credentialResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Error        string `json:"error,omitempty"`
}

// Register creates a new account and returns its first credential pair.
func (a *API) Register(ctx context.Context, username, password string) (Credentials, error) {
	return a.exchange(ctx, "/register", credentialRequest{Username: username, Password: password}, ErrInvalidCredentials)
}

// Login exchanges a username and password for a credential pair.
func (a *API) Login(ctx context.Context, username, password string) (Credentials, error) {
	return a.exchange(ctx, "/login", credentialRequest{Username: username, Password: password}, ErrInvalidCredentials)
}

// Refresh exchanges a refresh token for a new credential pair.
func (a *API) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	return a.exchange(ctx, "/refresh", credentialRequest{Refresh: refreshToken}, ErrInvalidRefresh)
}

func (a *API) exchange(ctx context.Context, path string, reqData credentialRequest, rejection error) (Credentials, error) {
	reqBody, err := json.Marshal(reqData)
	if err != nil {
		return Credentials{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return Credentials{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Success - decode response
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict, http.StatusBadRequest:
		return Credentials{}, rejection
	default:
		return Credentials{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	// Limit response body to 1MB to avoid pathological responses
	limitedReader := io.LimitReader(resp.Body, 1<<20)

	var credResp credentialResponse
	if err := json.NewDecoder(limitedReader).Decode(&credResp); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	if credResp.AccessToken == "" || credResp.RefreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: incomplete token pair in response", ErrUnavailable)
	}

	return Credentials{
		AccessToken:  credResp.AccessToken,
		RefreshToken: credResp.RefreshToken,
	}, nil
}
