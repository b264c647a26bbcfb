//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"videoxt/application/distribution"
	"videoxt/cmd"
	domaindist "videoxt/domain/distribution"
	"videoxt/domain/extraction"
	"videoxt/domain/notification"
	"videoxt/infrastructure/filesystem"
)

// fakeProber serves properties for the videos a scenario created
type fakeProber struct {
	props map[string]*extraction.Properties
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*extraction.Properties, error) {
	props, ok := p.props[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a video", extraction.ErrClosedCapture, path)
	}
	return props, nil
}

// fakeEditor records what it was asked to render and writes a placeholder output
type fakeEditor struct {
	calls       int
	audioFormat string
	dimensions  extraction.Dimensions
	rng         extraction.ExtractionRange
	err         error
}

func (e *fakeEditor) render(base extraction.PreparedBase) error {
	e.calls++
	e.rng = base.Range
	if e.err != nil {
		return e.err
	}
	return os.WriteFile(base.DestPath, []byte("media"), 0644)
}

func (e *fakeEditor) ExtractAudio(ctx context.Context, p *extraction.PreparedAudio) error {
	e.audioFormat = p.AudioFormat
	return e.render(p.PreparedBase)
}

func (e *fakeEditor) ExtractClip(ctx context.Context, p *extraction.PreparedClip) error {
	e.dimensions = p.ImageEdits.Dimensions
	return e.render(p.PreparedBase)
}

func (e *fakeEditor) ExtractGif(ctx context.Context, p *extraction.PreparedGif) error {
	e.dimensions = p.ImageEdits.Dimensions
	if e.err != nil {
		e.calls++
		return fmt.Errorf("%w: %s: %v", extraction.ErrGifWrite, p.DestPath, e.err)
	}
	return e.render(p.PreparedBase)
}

// fakeFrameWriter writes a placeholder image per frame until endAt
type fakeFrameWriter struct {
	endAt   int
	written []int
}

func (w *fakeFrameWriter) WriteFrame(ctx context.Context, p *extraction.PreparedFrames, frame int, dst string) error {
	if w.endAt > 0 && frame >= w.endAt {
		return fmt.Errorf("%w: frame %d", extraction.ErrFrameRead, frame)
	}
	w.written = append(w.written, frame)
	return os.WriteFile(dst, []byte("image"), 0644)
}

// fakeUploader records uploaded paths
type fakeUploader struct {
	paths []string
}

func (u *fakeUploader) UploadArtifact(ctx context.Context, path string) (*distribution.ArtifactResult, error) {
	u.paths = append(u.paths, path)
	name := filepath.Base(path)
	return &distribution.ArtifactResult{
		Files: []domaindist.UploadResult{{
			FileID:       "id-" + name,
			FileName:     name,
			ShareableURL: "https://drive.google.com/file/d/id-" + name + "/view",
			Size:         5,
		}},
	}, nil
}

type extractContext struct {
	tempDir  string
	prober   *fakeProber
	editor   *fakeEditor
	frames   *fakeFrameWriter
	uploader *fakeUploader
	output   *bytes.Buffer
	err      error
}

var SharedExtractContext = &extractContext{}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedExtractContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.prober = &fakeProber{props: make(map[string]*extraction.Properties)}
		testCtx.editor = &fakeEditor{}
		testCtx.frames = &fakeFrameWriter{}
		testCtx.uploader = &fakeUploader{}
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedExtractContext = &extractContext{}
		return c, nil
	})

	ctx.Step(`^a (\d+) second video "([^"]*)" at (\d+) fps (with|without) audio$`, testCtx.aVideo)
	ctx.Step(`^the file "([^"]*)" already exists$`, testCtx.theFileAlreadyExists)
	ctx.Step(`^the video stream ends at frame (\d+)$`, testCtx.theVideoStreamEndsAtFrame)
	ctx.Step(`^the editor fails with "([^"]*)"$`, testCtx.theEditorFailsWith)
	ctx.Step(`^I extract (audio|clip|frames|gif) from "([^"]*)"$`, testCtx.iExtract)
	ctx.Step(`^I extract (audio|clip|frames|gif) from "([^"]*)" with options:$`, testCtx.iExtractWithOptions)
	ctx.Step(`^I extract (audio|clip|frames|gif) from "([^"]*)" and upload it$`, testCtx.iExtractAndUpload)
	ctx.Step(`^I extract (audio|clip|frames|gif) from "([^"]*)" emailing "([^"]*)" without uploading$`, testCtx.iExtractEmailingWithoutUploading)
	ctx.Step(`^the extraction should succeed$`, testCtx.theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail with "([^"]*)"$`, testCtx.theExtractionShouldFailWith)
	ctx.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	ctx.Step(`^the directory "([^"]*)" should contain (\d+) images$`, testCtx.theDirectoryShouldContainImages)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	ctx.Step(`^the editor should have rendered audio as "([^"]*)"$`, testCtx.theEditorShouldHaveRenderedAudioAs)
	ctx.Step(`^the editor should have rendered at (\d+)x(\d+)$`, testCtx.theEditorShouldHaveRenderedAt)
	ctx.Step(`^the editor should not have run$`, testCtx.theEditorShouldNotHaveRun)
	ctx.Step(`^the prepared range should cover frames (\d+) to (\d+)$`, testCtx.thePreparedRangeShouldCoverFrames)
	ctx.Step(`^"([^"]*)" should have been uploaded$`, testCtx.shouldHaveBeenUploaded)
}

func (e *extractContext) aVideo(seconds int, name string, fps int, audio string) error {
	if err := os.WriteFile(filepath.Join(e.tempDir, name), []byte("not really a video"), 0644); err != nil {
		return err
	}
	e.prober.props[name] = &extraction.Properties{
		Dimensions: extraction.Dimensions{Width: 1920, Height: 1080},
		FPS:        float64(fps),
		FrameCount: seconds * fps,
		HasAudio:   audio == "with",
	}
	return nil
}

func (e *extractContext) theFileAlreadyExists(name string) error {
	return os.WriteFile(filepath.Join(e.tempDir, name), []byte("existing"), 0644)
}

func (e *extractContext) theVideoStreamEndsAtFrame(frame int) error {
	e.frames.endAt = frame
	return nil
}

func (e *extractContext) theEditorFailsWith(msg string) error {
	e.editor.err = errors.New(msg)
	return nil
}

func (e *extractContext) iExtract(method, name string) error {
	return e.run(method, name, nil, false)
}

func (e *extractContext) iExtractWithOptions(method, name string, table *godog.Table) error {
	return e.run(method, name, table, false)
}

func (e *extractContext) iExtractAndUpload(method, name string) error {
	return e.run(method, name, nil, true)
}

func (e *extractContext) iExtractEmailingWithoutUploading(method, name, list string) error {
	to, err := notification.ParseRecipients(list)
	if err != nil {
		return err
	}
	return e.runWith(method, name, nil, cmd.RunOptions{Notify: to})
}

func (e *extractContext) run(methodName, name string, table *godog.Table, upload bool) error {
	return e.runWith(methodName, name, table, cmd.RunOptions{Upload: upload})
}

func (e *extractContext) runWith(methodName, name string, table *godog.Table, opts cmd.RunOptions) error {
	preset, err := presetFromTable(methodName, table)
	if err != nil {
		return err
	}
	req, err := preset.Request()
	if err != nil {
		return err
	}
	method, err := extraction.ParseMethod(methodName)
	if err != nil {
		return err
	}

	deps := cmd.ExtractDependencies{
		Prober: e.prober,
		Editor: e.editor,
		Frames: e.frames,
		Files:  filesystem.NewChecker(),
	}
	if opts.Upload {
		deps.Uploader = e.uploader
	}

	e.err = cmd.RunExtractWithDependencies(
		context.Background(),
		deps,
		method,
		filepath.Join(e.tempDir, name),
		req,
		opts,
		e.output,
	)
	return nil
}

func (e *extractContext) theExtractionShouldSucceed() error {
	if e.err != nil {
		return fmt.Errorf("expected success, got error: %v\noutput: %s", e.err, e.output.String())
	}
	return nil
}

func (e *extractContext) theExtractionShouldFailWith(msg string) error {
	if e.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", msg)
	}
	if !strings.Contains(e.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got: %v", msg, e.err)
	}
	return nil
}

func (e *extractContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(filepath.Join(e.tempDir, name)); err != nil {
		entries, _ := os.ReadDir(e.tempDir)
		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return fmt.Errorf("expected %s to exist, found: %v", name, names)
	}
	return nil
}

func (e *extractContext) theDirectoryShouldContainImages(name string, count int) error {
	entries, err := os.ReadDir(filepath.Join(e.tempDir, name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(entries) != count {
		return fmt.Errorf("expected %d images in %s, got %d", count, name, len(entries))
	}
	return nil
}

func (e *extractContext) theOutputShouldContain(text string) error {
	if !strings.Contains(e.output.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, e.output.String())
	}
	return nil
}

func (e *extractContext) theEditorShouldHaveRenderedAudioAs(format string) error {
	if e.editor.audioFormat != format {
		return fmt.Errorf("expected audio format %q, got %q", format, e.editor.audioFormat)
	}
	return nil
}

func (e *extractContext) theEditorShouldHaveRenderedAt(width, height int) error {
	want := extraction.Dimensions{Width: width, Height: height}
	if e.editor.dimensions != want {
		return fmt.Errorf("expected dimensions %s, got %s", want, e.editor.dimensions)
	}
	return nil
}

func (e *extractContext) theEditorShouldNotHaveRun() error {
	if e.editor.calls != 0 {
		return fmt.Errorf("expected the editor not to run, it ran %d time(s)", e.editor.calls)
	}
	return nil
}

func (e *extractContext) thePreparedRangeShouldCoverFrames(start, stop int) error {
	if e.editor.rng.StartFrame != start || e.editor.rng.StopFrame != stop {
		return fmt.Errorf("expected frames %d to %d, got %d to %d", start, stop, e.editor.rng.StartFrame, e.editor.rng.StopFrame)
	}
	return nil
}

func (e *extractContext) shouldHaveBeenUploaded(name string) error {
	for _, p := range e.uploader.paths {
		if filepath.Base(p) == name {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be uploaded, uploaded: %v", name, e.uploader.paths)
}
