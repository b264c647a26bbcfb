package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appdist "videoxt/application/distribution"
	appnotify "videoxt/application/notification"
	"videoxt/domain/distribution"
	"videoxt/domain/notification"
	"videoxt/infrastructure/config"
	"videoxt/infrastructure/drive"
	"videoxt/infrastructure/filesystem"
	"videoxt/infrastructure/gmail"
	"videoxt/infrastructure/googleauth"
)

var (
	uploadFolderID string
	uploadNotify   string
)

// Notifier emails the share links of uploaded files
type Notifier interface {
	Notify(ctx context.Context, to []notification.Recipient, source string, files []distribution.UploadResult) error
}

// ShareNotice says who is emailed the share links after an upload
type ShareNotice struct {
	Notifier Notifier
	To       []notification.Recipient
}

func (n *ShareNotice) send(ctx context.Context, source string, files []distribution.UploadResult, output io.Writer) error {
	if err := n.Notifier.Notify(ctx, n.To, source, files); err != nil {
		return fmt.Errorf("failed to email share links: %w", err)
	}
	fmt.Fprintf(output, "Emailed share links to %d recipient(s)\n", len(n.To))
	return nil
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload an extraction result to Google Drive with public sharing",
	Long: `Upload an extracted file, or a frames directory, to Google Drive and
set "anyone with the link" sharing.

A frames directory is uploaded into a new Drive folder of the same name.
A file with the same name already in the folder is replaced.

Authentication uses google.token_file (OAuth, a browser opens on first use)
when set, and the google.credentials_file service account otherwise.

--notify emails the share links through Gmail from email.from_address, which
needs the OAuth sign-in.

Example:
  videoxt upload match_vxt.mp4
  videoxt upload match.mp4_frames --folder 1AbCdEf
  videoxt upload match.mp3 --notify "Ann Lee <ann@example.com>, bob@example.com"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFolderID, "folder", "", "Google Drive folder ID (default google.folder_id)")
	uploadCmd.Flags().StringVar(&uploadNotify, "notify", "", "Email the share links to these comma separated addresses")
}

func runUpload(cmd *cobra.Command, args []string) error {
	c, err := GetConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	var notice *ShareNotice
	if uploadNotify != "" {
		to, err := notification.ParseRecipients(uploadNotify)
		if err != nil {
			return fmt.Errorf("--notify: %w", err)
		}
		notifier, err := newNotifier(ctx, c, os.Stdout, logger)
		if err != nil {
			return err
		}
		notice = &ShareNotice{Notifier: notifier, To: to}
	}

	client, err := newDriveClient(ctx, c, os.Stdout, logger)
	if err != nil {
		return err
	}

	return RunUploadWithDependencies(ctx, client, filesystem.NewChecker(), folderOrDefault(c, uploadFolderID), args[0], notice, os.Stdout)
}

// oauthScopes is every scope the stored OAuth token is granted, so Drive and
// Gmail can share one sign-in
func oauthScopes(c *config.Config) []string {
	scopes := []string{drive.OAuthScope}
	if c.Email.Enabled() {
		scopes = append(scopes, gmail.OAuthScope)
	}
	return scopes
}

func oauthConfig(c *config.Config) googleauth.Config {
	return googleauth.Config{
		CredentialsFile: c.Google.CredentialsFile,
		TokenFile:       c.Google.TokenFile,
		Scopes:          oauthScopes(c),
	}
}

// newNotifier builds the Gmail backed notification service
func newNotifier(ctx context.Context, c *config.Config, out io.Writer, logger *zap.Logger) (*appnotify.Service, error) {
	if !c.Email.Enabled() {
		return nil, fmt.Errorf("email.from_address is not set; run 'videoxt setup' first")
	}
	if c.Google.CredentialsFile == "" || c.Google.TokenFile == "" {
		return nil, fmt.Errorf("emailing share links needs google.credentials_file and google.token_file")
	}

	from := notification.Recipient{Name: c.Email.FromName, Address: c.Email.FromAddress}
	sender, err := gmail.NewClientWithOAuth(ctx, oauthConfig(c), from, out, gmail.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}
	return appnotify.NewService(sender, c.Email.SenderName, logger), nil
}

func folderOrDefault(c *config.Config, folderID string) string {
	if folderID != "" {
		return folderID
	}
	return c.Google.FolderID
}

// newDriveClient authenticates with OAuth when a token file is configured,
// and with the service account credentials otherwise
func newDriveClient(ctx context.Context, c *config.Config, out io.Writer, logger *zap.Logger) (*drive.Client, error) {
	if c.Google.CredentialsFile == "" {
		return nil, fmt.Errorf("google.credentials_file is not set; run 'videoxt setup' first")
	}

	var (
		client *drive.Client
		err    error
	)
	if c.Google.TokenFile != "" {
		client, err = drive.NewClientWithOAuth(ctx, oauthConfig(c), out, drive.WithLogger(logger))
	} else {
		client, err = drive.NewClient(ctx, c.Google.CredentialsFile, drive.WithLogger(logger))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}
	return client, nil
}

func newUploadService(ctx context.Context, c *config.Config, folderID string, out io.Writer, logger *zap.Logger) (*appdist.UploadService, error) {
	client, err := newDriveClient(ctx, c, out, logger)
	if err != nil {
		return nil, err
	}
	return appdist.NewUploadService(client, filesystem.NewChecker(), folderOrDefault(c, folderID), out, logger), nil
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	driveClient distribution.DriveClient,
	files appdist.ArtifactLister,
	folderID string,
	path string,
	notice *ShareNotice,
	output io.Writer,
) error {
	service := appdist.NewUploadService(driveClient, files, folderID, output, nil)

	fmt.Fprintf(output, "Uploading %s...\n", path)
	result, err := service.UploadArtifact(ctx, path)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	for _, f := range result.Files {
		fmt.Fprintf(output, "  %s: %s\n", f.FileName, f.ShareableURL)
	}
	fmt.Fprintf(output, "Upload complete! %d file(s), %.2f MB\n", len(result.Files), float64(result.TotalSize())/1024/1024)

	if notice != nil && len(notice.To) > 0 {
		return notice.send(ctx, filepath.Base(path), result.Files, output)
	}
	return nil
}
