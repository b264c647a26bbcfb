//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	googledrive "google.golang.org/api/drive/v3"
	googlemail "google.golang.org/api/gmail/v1"

	appnotify "videoxt/application/notification"
	"videoxt/cmd"
	"videoxt/domain/notification"
	"videoxt/infrastructure/drive"
	"videoxt/infrastructure/filesystem"
	"videoxt/infrastructure/gmail"
)

// uploadMockGmailService records sent messages
type uploadMockGmailService struct {
	sent []*googlemail.Message
}

func (m *uploadMockGmailService) SendMessage(ctx context.Context, userID string, message *googlemail.Message) (*googlemail.Message, error) {
	m.sent = append(m.sent, message)
	return &googlemail.Message{Id: fmt.Sprintf("message-%d", len(m.sent))}, nil
}

// uploadMockDriveService is an in-memory Drive behind the real drive.Client
type uploadMockDriveService struct {
	files          []*googledrive.File
	uploadedFiles  []*googledrive.File
	folders        []*googledrive.File
	permissions    map[string]*googledrive.Permission
	deletedFileIDs []string
	nextFileID     int
}

func newUploadMockDriveService() *uploadMockDriveService {
	return &uploadMockDriveService{
		permissions: make(map[string]*googledrive.Permission),
		nextFileID:  1,
	}
}

// queryValue extracts the quoted value that follows key in a Drive query
func queryValue(query, key string) (string, bool) {
	start := strings.Index(query, key)
	if start < 0 {
		return "", false
	}
	rest := query[start+len(key):]
	end := strings.Index(rest, "'")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func (m *uploadMockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*googledrive.File, error) {
	parent, _ := queryValue(query, "'")
	name, byName := queryValue(query, "name = '")

	var result []*googledrive.File
	for _, f := range m.files {
		if len(f.Parents) > 0 && f.Parents[0] != parent {
			continue
		}
		if byName && f.Name != name {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *uploadMockDriveService) CreateFile(ctx context.Context, file *googledrive.File, localPath string) (*googledrive.File, error) {
	fileID := fmt.Sprintf("file-%d", m.nextFileID)
	m.nextFileID++

	created := &googledrive.File{
		Id:       fileID,
		Name:     file.Name,
		MimeType: file.MimeType,
		Parents:  file.Parents,
	}

	if localPath == "" {
		m.folders = append(m.folders, created)
		return created, nil
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	created.Size = info.Size()
	created.WebViewLink = fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)

	m.files = append(m.files, created)
	m.uploadedFiles = append(m.uploadedFiles, created)
	return created, nil
}

func (m *uploadMockDriveService) CreatePermission(ctx context.Context, fileID string, permission *googledrive.Permission) error {
	m.permissions[fileID] = permission
	return nil
}

func (m *uploadMockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	m.deletedFileIDs = append(m.deletedFileIDs, fileID)
	for i, f := range m.files {
		if f.Id == fileID {
			m.files = append(m.files[:i], m.files[i+1:]...)
			break
		}
	}
	return nil
}

type uploadContext struct {
	tempDir     string
	folderID    string
	mockService *uploadMockDriveService
	existingIDs map[string]string
	mockGmail   *uploadMockGmailService
	notice      *cmd.ShareNotice
	output      *bytes.Buffer
	err         error
}

var SharedUploadContext = &uploadContext{}

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedUploadContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "upload-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.folderID = ""
		testCtx.mockService = newUploadMockDriveService()
		testCtx.existingIDs = make(map[string]string)
		testCtx.mockGmail = &uploadMockGmailService{}
		testCtx.notice = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedUploadContext = &uploadContext{}
		return c, nil
	})

	ctx.Step(`^the Drive folder "([^"]*)" is empty$`, testCtx.theDriveFolderIsEmpty)
	ctx.Step(`^the Drive folder "([^"]*)" already has "([^"]*)"$`, testCtx.theDriveFolderAlreadyHas)
	ctx.Step(`^a local file "([^"]*)" of (\d+) bytes$`, testCtx.aLocalFileOfBytes)
	ctx.Step(`^a local directory "([^"]*)" with (\d+) images$`, testCtx.aLocalDirectoryWithImages)
	ctx.Step(`^share links are emailed to "([^"]*)"$`, testCtx.shareLinksAreEmailedTo)
	ctx.Step(`^I upload "([^"]*)"$`, testCtx.iUpload)
	ctx.Step(`^I upload "([^"]*)" without a folder$`, testCtx.iUploadWithoutAFolder)
	ctx.Step(`^the upload should succeed$`, testCtx.theUploadShouldSucceed)
	ctx.Step(`^the upload should fail with "([^"]*)"$`, testCtx.theUploadShouldFailWith)
	ctx.Step(`^the Drive folder "([^"]*)" should contain "([^"]*)"$`, testCtx.theDriveFolderShouldContain)
	ctx.Step(`^a Drive folder "([^"]*)" should have been created$`, testCtx.aDriveFolderShouldHaveBeenCreated)
	ctx.Step(`^(\d+) files should have been uploaded$`, testCtx.filesShouldHaveBeenUploaded)
	ctx.Step(`^the old "([^"]*)" should have been deleted$`, testCtx.theOldShouldHaveBeenDeleted)
	ctx.Step(`^the output should show "([^"]*)"$`, testCtx.theOutputShouldShow)
	ctx.Step(`^an email listing "([^"]*)" should have been sent to "([^"]*)"$`, testCtx.anEmailListingShouldHaveBeenSentTo)
}

func (u *uploadContext) theDriveFolderIsEmpty(folderID string) error {
	u.folderID = folderID
	return nil
}

func (u *uploadContext) theDriveFolderAlreadyHas(folderID, name string) error {
	id := "existing-" + name
	u.mockService.files = append(u.mockService.files, &googledrive.File{
		Id:      id,
		Name:    name,
		Parents: []string{folderID},
		Size:    1024,
	})
	u.existingIDs[name] = id
	return nil
}

func (u *uploadContext) aLocalFileOfBytes(name string, size int) error {
	return os.WriteFile(filepath.Join(u.tempDir, name), make([]byte, size), 0644)
}

func (u *uploadContext) aLocalDirectoryWithImages(name string, count int) error {
	dir := filepath.Join(u.tempDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("match_%d.jpg", i*15))
		if err := os.WriteFile(path, []byte("image"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (u *uploadContext) shareLinksAreEmailedTo(list string) error {
	to, err := notification.ParseRecipients(list)
	if err != nil {
		return err
	}
	from := notification.Recipient{Name: "Sam Editor", Address: "sam@example.com"}
	sender := gmail.NewClient(from, gmail.WithGmailService(u.mockGmail))
	u.notice = &cmd.ShareNotice{
		Notifier: appnotify.NewService(sender, "Sam", nil),
		To:       to,
	}
	return nil
}

func (u *uploadContext) upload(name, folderID string) error {
	client, err := drive.NewClient(context.Background(), "", drive.WithDriveService(u.mockService))
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}
	u.err = cmd.RunUploadWithDependencies(
		context.Background(),
		client,
		filesystem.NewChecker(),
		folderID,
		filepath.Join(u.tempDir, name),
		u.notice,
		u.output,
	)
	return nil
}

func (u *uploadContext) iUpload(name string) error {
	return u.upload(name, u.folderID)
}

func (u *uploadContext) iUploadWithoutAFolder(name string) error {
	return u.upload(name, "")
}

func (u *uploadContext) theUploadShouldSucceed() error {
	if u.err != nil {
		return fmt.Errorf("expected success, got error: %v\noutput: %s", u.err, u.output.String())
	}
	return nil
}

func (u *uploadContext) theUploadShouldFailWith(msg string) error {
	if u.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", msg)
	}
	if !strings.Contains(u.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, u.err)
	}
	return nil
}

func (u *uploadContext) theDriveFolderShouldContain(folderID, name string) error {
	for _, f := range u.mockService.files {
		if f.Name == name && len(f.Parents) > 0 && f.Parents[0] == folderID {
			if _, shared := u.mockService.permissions[f.Id]; !shared {
				return fmt.Errorf("%s was uploaded but not shared", name)
			}
			return nil
		}
	}
	return fmt.Errorf("expected %s in folder %s", name, folderID)
}

func (u *uploadContext) aDriveFolderShouldHaveBeenCreated(name string) error {
	for _, f := range u.mockService.folders {
		if f.Name == name {
			if len(f.Parents) == 0 || f.Parents[0] != u.folderID {
				return fmt.Errorf("folder %s created outside %s", name, u.folderID)
			}
			return nil
		}
	}
	return fmt.Errorf("expected a Drive folder named %s", name)
}

func (u *uploadContext) filesShouldHaveBeenUploaded(count int) error {
	if len(u.mockService.uploadedFiles) != count {
		return fmt.Errorf("expected %d uploads, got %d", count, len(u.mockService.uploadedFiles))
	}
	return nil
}

func (u *uploadContext) theOldShouldHaveBeenDeleted(name string) error {
	id := u.existingIDs[name]
	for _, deleted := range u.mockService.deletedFileIDs {
		if deleted == id {
			return nil
		}
	}
	return fmt.Errorf("expected %s (%s) to be deleted, deleted: %v", name, id, u.mockService.deletedFileIDs)
}

func (u *uploadContext) theOutputShouldShow(text string) error {
	if !strings.Contains(u.output.String(), text) {
		return fmt.Errorf("expected output to show %q, got:\n%s", text, u.output.String())
	}
	return nil
}

func (u *uploadContext) anEmailListingShouldHaveBeenSentTo(name, address string) error {
	if len(u.mockGmail.sent) != 1 {
		return fmt.Errorf("expected 1 email, got %d", len(u.mockGmail.sent))
	}
	raw, err := base64.URLEncoding.DecodeString(u.mockGmail.sent[0].Raw)
	if err != nil {
		return fmt.Errorf("failed to decode email: %w", err)
	}
	msg := string(raw)
	if !strings.Contains(msg, "<"+address+">") && !strings.Contains(msg, "To: "+address) {
		return fmt.Errorf("email not addressed to %s:\n%s", address, msg)
	}
	if !strings.Contains(msg, name) || !strings.Contains(msg, "https://drive.google.com/file/d/") {
		return fmt.Errorf("email does not list %s with its link:\n%s", name, msg)
	}
	return nil
}
