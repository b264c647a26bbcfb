package drive

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"videoxt/infrastructure/googleauth"
)

// NewClientWithOAuth creates a new Google Drive client using OAuth 2.0 user
// authentication. The Drive file scope is requested when cfg names no scopes.
func NewClientWithOAuth(ctx context.Context, cfg googleauth.Config, out io.Writer, opts ...ClientOption) (*Client, error) {
	c := newClient(opts)

	if c.driveService == nil {
		if len(cfg.Scopes) == 0 {
			cfg.Scopes = []string{OAuthScope}
		}
		httpClient, err := googleauth.HTTPClient(ctx, cfg, out, c.logger)
		if err != nil {
			return nil, err
		}
		srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}
