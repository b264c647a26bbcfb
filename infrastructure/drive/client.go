package drive

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"videoxt/domain/distribution"
)

// OAuthScope is the Drive scope uploads need: access to files this app created
const OAuthScope = drive.DriveFileScope

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error)
	CreateFile(ctx context.Context, file *drive.File, localPath string) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
	DeleteFile(ctx context.Context, fileID string) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fields + ")")).
		OrderBy(orderBy).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// CreateFile creates file metadata, uploading the content at localPath when it is set
func (s *GoogleDriveService) CreateFile(ctx context.Context, file *drive.File, localPath string) (*drive.File, error) {
	call := s.service.Files.Create(file).
		Fields("id, name, mimeType, size, webViewLink").
		Context(ctx)

	if localPath != "" {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		call = call.Media(f, googleapi.ContentType(file.MimeType))
	}

	return call.Do()
}

// CreatePermission grants a permission on a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).Context(ctx).Do()
	return err
}

// DeleteFile deletes a file permanently
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).Context(ctx).Do()
}

// Client implements distribution.DriveClient using Google Drive API
type Client struct {
	driveService DriveService
	logger       *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newClient(opts []ClientOption) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient creates a new Google Drive client authenticated with a service account
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := newClient(opts)

	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, OAuthScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// ListFiles implements distribution.DriveClient
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
	files, err := c.driveService.ListFiles(ctx, query, "id, name, mimeType, size, createdTime", "name")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	result := make([]distribution.FileInfo, 0, len(files))
	for _, f := range files {
		result = append(result, toFileInfo(f))
	}
	return result, nil
}

// FindFileByName implements distribution.DriveClient
func (c *Client) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", escapeQuery(folderID), escapeQuery(name))
	files, err := c.driveService.ListFiles(ctx, query, "id, name, mimeType, size, createdTime", "createdTime desc")
	if err != nil {
		return nil, fmt.Errorf("failed to search for %s: %w", name, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	info := toFileInfo(files[0])
	return &info, nil
}

// CreateFolder implements distribution.DriveClient
func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	folder, err := c.driveService.CreateFile(ctx, &drive.File{
		Name:     name,
		MimeType: distribution.MimeTypeFolder,
		Parents:  []string{parentID},
	}, "")
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	c.logger.Debug("created drive folder", zap.String("name", name), zap.String("id", folder.Id))
	return folder.Id, nil
}

// UploadAndShare implements distribution.DriveClient
func (c *Client) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	uploaded, err := c.driveService.CreateFile(ctx, &drive.File{
		Name:     req.FileName,
		MimeType: req.MimeType,
		Parents:  []string{req.FolderID},
	}, req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", req.FileName, err)
	}

	if err := c.driveService.CreatePermission(ctx, uploaded.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}); err != nil {
		return nil, fmt.Errorf("failed to share %s: %w", req.FileName, err)
	}

	url := uploaded.WebViewLink
	if url == "" {
		url = fmt.Sprintf("https://drive.google.com/file/d/%s/view", uploaded.Id)
	}

	c.logger.Debug("uploaded file", zap.String("name", uploaded.Name), zap.String("id", uploaded.Id), zap.Int64("size", uploaded.Size))
	return &distribution.UploadResult{
		FileID:       uploaded.Id,
		FileName:     uploaded.Name,
		ShareableURL: url,
		Size:         uploaded.Size,
	}, nil
}

// DeletePermanently implements distribution.DriveClient
func (c *Client) DeletePermanently(ctx context.Context, fileID string) error {
	if err := c.driveService.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}
	return nil
}

func toFileInfo(f *drive.File) distribution.FileInfo {
	return distribution.FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		CreatedTime: parseTime(f.CreatedTime),
	}
}

// escapeQuery escapes a value for use inside a quoted Drive query term
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// parseTime parses a Google Drive timestamp string
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure Client implements distribution.DriveClient
var _ distribution.DriveClient = (*Client)(nil)
