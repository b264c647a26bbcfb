package distribution

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"videoxt/domain/distribution"
)

type mockDriveClient struct {
	existing  map[string]*distribution.FileInfo
	folders   []string
	uploads   []distribution.UploadRequest
	deleted   []string
	uploadErr error
}

func (m *mockDriveClient) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	return nil, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	return m.existing[name], nil
}

func (m *mockDriveClient) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	m.folders = append(m.folders, parentID+"/"+name)
	return "folder-" + name, nil
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, req)
	return &distribution.UploadResult{
		FileID:       "id-" + req.FileName,
		FileName:     req.FileName,
		ShareableURL: "https://drive.google.com/file/d/id-" + req.FileName + "/view",
		Size:         2 * 1024 * 1024,
	}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	return nil
}

type mockLister struct {
	dirs  map[string]bool
	files map[string][]string
	err   error
}

func (m *mockLister) IsDir(path string) bool { return m.dirs[path] }

func (m *mockLister) Files(path string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.files[path], nil
}

func TestUploadService_UploadArtifact(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		lister      *mockLister
		client      *mockDriveClient
		folderID    string
		wantFiles   int
		wantFolders []string
		wantMime    string
		wantDeleted []string
		wantErr     string
	}{
		{
			name:      "single gif",
			path:      "/out/loop.gif",
			lister:    &mockLister{files: map[string][]string{"/out/loop.gif": {"/out/loop.gif"}}},
			client:    &mockDriveClient{},
			folderID:  "root",
			wantFiles: 1,
			wantMime:  "image/gif",
		},
		{
			name: "frames directory becomes a folder",
			path: "/out/video.mp4_frames",
			lister: &mockLister{
				dirs:  map[string]bool{"/out/video.mp4_frames": true},
				files: map[string][]string{"/out/video.mp4_frames": {"/out/video.mp4_frames/video_0.jpg", "/out/video.mp4_frames/video_30.jpg"}},
			},
			client:      &mockDriveClient{},
			folderID:    "root",
			wantFiles:   2,
			wantFolders: []string{"root/video.mp4_frames"},
			wantMime:    "image/jpeg",
		},
		{
			name:   "replaces existing file",
			path:   "/out/song.mp3",
			lister: &mockLister{files: map[string][]string{"/out/song.mp3": {"/out/song.mp3"}}},
			client: &mockDriveClient{existing: map[string]*distribution.FileInfo{
				"song.mp3": {ID: "old", Name: "song.mp3", Size: 1024},
			}},
			folderID:    "root",
			wantFiles:   1,
			wantMime:    "audio/mpeg",
			wantDeleted: []string{"old"},
		},
		{
			name:    "no folder configured",
			path:    "/out/song.mp3",
			lister:  &mockLister{},
			client:  &mockDriveClient{},
			wantErr: "no Drive folder configured",
		},
		{
			name: "empty frames directory",
			path: "/out/empty_frames",
			lister: &mockLister{
				dirs:  map[string]bool{"/out/empty_frames": true},
				files: map[string][]string{},
			},
			client:   &mockDriveClient{},
			folderID: "root",
			wantErr:  "nothing to upload",
		},
		{
			name:     "missing artifact",
			path:     "/out/missing.mp4",
			lister:   &mockLister{err: errors.New("failed to stat /out/missing.mp4")},
			client:   &mockDriveClient{},
			folderID: "root",
			wantErr:  "failed to stat",
		},
		{
			name:     "upload failure",
			path:     "/out/clip.mp4",
			lister:   &mockLister{files: map[string][]string{"/out/clip.mp4": {"/out/clip.mp4"}}},
			client:   &mockDriveClient{uploadErr: errors.New("quota exceeded")},
			folderID: "root",
			wantErr:  "failed to upload and share clip.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			svc := NewUploadService(tt.client, tt.lister, tt.folderID, &out, nil)

			result, err := svc.UploadArtifact(context.Background(), tt.path)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("UploadArtifact() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UploadArtifact() unexpected error: %v", err)
			}

			if len(result.Files) != tt.wantFiles {
				t.Errorf("uploaded %d files, want %d", len(result.Files), tt.wantFiles)
			}
			if result.TotalSize() != int64(tt.wantFiles)*2*1024*1024 {
				t.Errorf("TotalSize() = %d", result.TotalSize())
			}
			if len(tt.client.folders) != len(tt.wantFolders) {
				t.Errorf("folders = %v, want %v", tt.client.folders, tt.wantFolders)
			}
			if len(tt.wantFolders) > 0 {
				if result.FolderID != "folder-video.mp4_frames" {
					t.Errorf("FolderID = %q", result.FolderID)
				}
				for _, u := range tt.client.uploads {
					if u.FolderID != result.FolderID {
						t.Errorf("uploaded %s to %s, want frames folder", u.FileName, u.FolderID)
					}
				}
			}
			for _, u := range tt.client.uploads {
				if u.MimeType != tt.wantMime {
					t.Errorf("MimeType = %q, want %q", u.MimeType, tt.wantMime)
				}
			}
			if len(tt.client.deleted) != len(tt.wantDeleted) {
				t.Errorf("deleted = %v, want %v", tt.client.deleted, tt.wantDeleted)
			}
			if !strings.Contains(out.String(), "(2.0 MB)") {
				t.Errorf("output missing size: %q", out.String())
			}
		})
	}
}
