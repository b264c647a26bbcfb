package distribution

import (
	"mime"
	"path/filepath"
	"strings"
)

// UploadRequest contains the parameters needed to upload a file to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID       string // Google Drive file ID
	FileName     string // Name of the uploaded file
	ShareableURL string // URL for sharing the file
	Size         int64  // Size of the uploaded file in bytes
}

// MIME type constants for extraction outputs
const (
	MimeTypeFolder = "application/vnd.google-apps.folder"
	MimeTypeBinary = "application/octet-stream"
)

var mimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"gif":  "image/gif",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// MimeTypeFor returns the MIME type for an extracted file based on its suffix
func MimeTypeFor(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return MimeTypeBinary
}
