package creds

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token := store.AccessToken(); token != "" {
		t.Errorf("expected empty token before save, got %q", token)
	}

	pair := Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}
	if err := store.Save(pair); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second store over the same file sees the persisted pair.
	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if token := reopened.AccessToken(); token != "acc-1" {
		t.Errorf("expected acc-1 after reopen, got %q", token)
	}
}

func TestFileStoreRefreshPersists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Refresh != "ref-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(credentialResponse{Error: "unknown refresh token"})
			return
		}
		_ = json.NewEncoder(w).Encode(credentialResponse{AccessToken: "acc-2", RefreshToken: "ref-2"})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path, NewAPI(server.URL))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Save(Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	token, err := store.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if token != "acc-2" {
		t.Errorf("expected acc-2, got %q", token)
	}

	reopened, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.AccessToken(); got != "acc-2" {
		t.Errorf("expected refreshed pair on disk, got token %q", got)
	}
}

func TestFileStoreRefreshWithoutCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = store.Refresh(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := store.Save(Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if token := store.AccessToken(); token != "" {
		t.Errorf("expected empty token after clear, got %q", token)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected credentials file to be removed, stat err %v", err)
	}

	// Clearing again is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestFileStoreCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, nil); err == nil {
		t.Error("expected error for corrupt credentials file")
	}
}
