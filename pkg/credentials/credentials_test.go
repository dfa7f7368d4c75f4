package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quill-social/quill/pkg/config"
)

func initConfig(t *testing.T) {
	t.Helper()
	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
}

// TestCredentialsIsExpired validates token expiration check
func TestCredentialsIsExpired(t *testing.T) {
	testCases := []struct {
		expiresAt time.Time
		expect    bool
		name      string
	}{
		{time.Now().Add(-1 * time.Hour), true, "past expiration"},
		{time.Now().Add(1 * time.Hour), false, "future expiration"},
		{time.Now().Add(-1 * time.Minute), true, "recently expired"},
		{time.Now().Add(1 * time.Minute), false, "expiring soon"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			creds := &Credentials{
				AccessToken: "test_token",
				ExpiresAt:   tc.expiresAt,
			}

			if result := creds.IsExpired(); result != tc.expect {
				t.Errorf("Expected IsExpired=%v, got %v", tc.expect, result)
			}
		})
	}
}

// TestCredentialsIsValid validates credential validity check
func TestCredentialsIsValid(t *testing.T) {
	testCases := []struct {
		accessToken string
		userID      string
		expiresAt   time.Time
		expect      bool
		name        string
	}{
		{"valid_token", "u1", time.Now().Add(1 * time.Hour), true, "valid credentials"},
		{"", "u1", time.Now().Add(1 * time.Hour), false, "empty access token"},
		{"valid_token", "", time.Now().Add(1 * time.Hour), false, "missing user id"},
		{"valid_token", "u1", time.Now().Add(-1 * time.Hour), false, "expired token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			creds := &Credentials{
				AccessToken: tc.accessToken,
				UserID:      tc.userID,
				ExpiresAt:   tc.expiresAt,
			}

			if result := creds.IsValid(); result != tc.expect {
				t.Errorf("Expected IsValid=%v, got %v", tc.expect, result)
			}
		})
	}
}

func TestExpiresSoon(t *testing.T) {
	creds := &Credentials{ExpiresAt: time.Now().Add(2 * time.Minute)}
	if !creds.ExpiresSoon(5 * time.Minute) {
		t.Error("Expected token expiring in 2m to expire within 5m")
	}
	if creds.ExpiresSoon(time.Minute) {
		t.Error("Expected token expiring in 2m not to expire within 1m")
	}
}

// TestLoadMissing validates that absent credentials are not an error
func TestLoadMissing(t *testing.T) {
	initConfig(t)

	creds, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if creds != nil {
		t.Errorf("Expected nil credentials, got %+v", creds)
	}
}

// TestSaveLoadDelete validates the full on-disk lifecycle
func TestSaveLoadDelete(t *testing.T) {
	initConfig(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	original := &Credentials{
		AccessToken:  "access_123",
		RefreshToken: "refresh_123",
		ExpiresAt:    expires,
		UserID:       "7c1d0a4e",
		Email:        "ada@example.com",
	}
	if err := Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(config.GetCredentialsPath())
	if err != nil {
		t.Fatalf("Credentials file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.UserID != original.UserID || loaded.AccessToken != original.AccessToken {
		t.Errorf("Loaded credentials differ: %+v", loaded)
	}
	if !loaded.ExpiresAt.Equal(expires) {
		t.Errorf("Expected expiry %v, got %v", expires, loaded.ExpiresAt)
	}

	if err := Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := Delete(); err != nil {
		t.Errorf("Deleting twice should be a no-op, got %v", err)
	}

	loaded, err = Load()
	if err != nil || loaded != nil {
		t.Errorf("Expected no credentials after delete, got %+v, %v", loaded, err)
	}
}

// TestLoadCorrupt validates a corrupt file surfaces an error
func TestLoadCorrupt(t *testing.T) {
	initConfig(t)

	if err := os.WriteFile(config.GetCredentialsPath(), []byte("{oops"), 0600); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Error("Expected error for corrupt credentials")
	}
}
