package distribution

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"videoxt/domain/distribution"
)

// ArtifactLister resolves an extraction's destination to the files it produced
type ArtifactLister interface {
	IsDir(path string) bool
	Files(path string) ([]string, error)
}

// UploadService handles file upload operations to Google Drive
type UploadService struct {
	driveClient distribution.DriveClient
	files       ArtifactLister
	folderID    string
	output      io.Writer
	logger      *zap.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, files ArtifactLister, folderID string, output io.Writer, logger *zap.Logger) *UploadService {
	if output == nil {
		output = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		driveClient: client,
		files:       files,
		folderID:    folderID,
		output:      output,
		logger:      logger,
	}
}

// ArtifactResult describes an uploaded extraction output
type ArtifactResult struct {
	// FolderID is set when a frames directory was uploaded into its own folder
	FolderID string
	Files    []distribution.UploadResult
}

// TotalSize returns the bytes uploaded
func (r *ArtifactResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// UploadArtifact uploads an extraction output. A single file (audio, clip or
// gif) goes into the configured folder; a frames directory becomes a Drive
// folder of the same name holding every image.
func (s *UploadService) UploadArtifact(ctx context.Context, path string) (*ArtifactResult, error) {
	if s.folderID == "" {
		return nil, fmt.Errorf("no Drive folder configured: set google.folder_id or pass --folder")
	}

	files, err := s.files.Files(path)
	if err != nil {
		return nil, err
	}

	result := &ArtifactResult{}
	target := s.folderID
	if s.files.IsDir(path) {
		if len(files) == 0 {
			return nil, fmt.Errorf("nothing to upload in %s", path)
		}
		name := filepath.Base(path)
		id, err := s.driveClient.CreateFolder(ctx, s.folderID, name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.output, "Created folder %s\n", name)
		result.FolderID = id
		target = id
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		uploaded, err := s.uploadAndShare(ctx, file, target)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, *uploaded)
		fmt.Fprintf(s.output, "[%d/%d] %s (%.1f MB)\n", i+1, len(files), uploaded.FileName, float64(uploaded.Size)/1024/1024)
	}

	s.logger.Info("upload complete",
		zap.String("path", path),
		zap.Int("files", len(result.Files)),
		zap.Int64("bytes", result.TotalSize()),
	)
	return result, nil
}

// uploadAndShare uploads a file and sets public sharing permissions
func (s *UploadService) uploadAndShare(ctx context.Context, filePath, folderID string) (*distribution.UploadResult, error) {
	fileName := filepath.Base(filePath)

	// Check for existing file with same name and delete if found
	existing, err := s.driveClient.FindFileByName(ctx, folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "      Replacing existing %s (%.1f MB)\n", existing.Name, float64(existing.Size)/1024/1024)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  folderID,
		MimeType:  distribution.MimeTypeFor(filePath),
	}

	result, err := s.driveClient.UploadAndShare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	return result, nil
}
