package googleauth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSaveToken_PrivateFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := saveToken(file, token); err != nil {
		t.Fatalf("saveToken() unexpected error: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}

	got, err := loadToken(file)
	if err != nil {
		t.Fatalf("loadToken() unexpected error: %v", err)
	}
	if got.RefreshToken != "refresh" || !got.Expiry.Equal(token.Expiry) {
		t.Errorf("loadToken() = %+v, want refresh token and expiry preserved", got)
	}
}

func TestLoadToken_Missing(t *testing.T) {
	if _, err := loadToken(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("loadToken() expected error for a missing file")
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no scopes",
			cfg:     Config{CredentialsFile: badJSON},
			wantErr: "scope",
		},
		{
			name:    "missing credentials",
			cfg:     Config{CredentialsFile: filepath.Join(dir, "missing.json"), Scopes: []string{"s"}},
			wantErr: "unable to read OAuth credentials file",
		},
		{
			name:    "unparseable credentials",
			cfg:     Config{CredentialsFile: badJSON, Scopes: []string{"s"}},
			wantErr: "unable to parse OAuth credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HTTPClient(context.Background(), tt.cfg, nil, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("HTTPClient() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
