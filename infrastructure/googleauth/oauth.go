// Package googleauth runs the OAuth 2.0 user consent flow shared by the
// Google Drive and Gmail adapters and keeps the token on disk.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// callbackAddr is where the browser is redirected after consent
const callbackAddr = "localhost:8085"

// Config holds the configuration for OAuth 2.0 authentication
type Config struct {
	CredentialsFile string   // Path to OAuth client credentials JSON
	TokenFile       string   // Path to store/load token
	Scopes          []string // Every scope the stored token must carry
}

// HTTPClient returns a client authorized for cfg.Scopes. The first run opens
// a browser for consent and stores the token; later runs reuse and refresh
// it. A token granted for fewer scopes must be deleted to consent again.
func HTTPClient(ctx context.Context, cfg Config, out io.Writer, logger *zap.Logger) (*http.Client, error) {
	if len(cfg.Scopes) == 0 {
		return nil, errors.New("at least one OAuth scope is required")
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	token, err := getToken(ctx, config, cfg.TokenFile, out, logger)
	if err != nil {
		return nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	return config.Client(ctx, token), nil
}

// getToken loads and refreshes a stored token, falling back to the browser flow
func getToken(ctx context.Context, config *oauth2.Config, tokenFile string, out io.Writer, logger *zap.Logger) (*oauth2.Token, error) {
	token, err := loadToken(tokenFile)
	if err == nil {
		fresh, err := config.TokenSource(ctx, token).Token()
		if err == nil {
			if fresh.AccessToken != token.AccessToken {
				if err := saveToken(tokenFile, fresh); err != nil {
					logger.Warn("could not save refreshed token", zap.Error(err))
				}
			}
			return fresh, nil
		}
		logger.Debug("stored token could not be refreshed", zap.Error(err))
	}

	token, err = getTokenFromWeb(ctx, config, out)
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokenFile, token); err != nil {
		fmt.Fprintf(out, "Warning: couldn't save token: %v\n", err)
	}
	return token, nil
}

// loadToken loads a token from a file
func loadToken(file string) (*oauth2.Token, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := sonic.Unmarshal(data, token); err != nil {
		return nil, err
	}
	return token, nil
}

// saveToken saves a token to a file readable only by the user
func saveToken(file string, token *oauth2.Token) error {
	data, err := sonic.Marshal(token)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	return os.WriteFile(file, data, 0600)
}

// getTokenFromWeb runs the consent flow with a local callback server
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	config.RedirectURL = "http://" + callbackAddr + "/callback"

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- errors.New("no code in callback")
			fmt.Fprint(w, "Error: No authorization code received")
			return
		}
		codeChan <- code
		fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("videoxt", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Opening browser for Google authentication...")
	fmt.Fprintln(out, "If the browser doesn't open, please visit this URL:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out)

	openBrowser(authURL)

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}

	fmt.Fprintln(out, "Authentication successful!")
	return token, nil
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.Command("xdg-open", url)
		} else if _, err := exec.LookPath("wslview"); err == nil {
			cmd = exec.Command("wslview", url)
		}
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}

	if cmd != nil {
		_ = cmd.Start()
	}
}
