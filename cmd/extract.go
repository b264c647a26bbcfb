package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appdist "videoxt/application/distribution"
	"videoxt/application/extract"
	"videoxt/domain/extraction"
	"videoxt/domain/notification"
	"videoxt/infrastructure/config"
	"videoxt/infrastructure/ffmpeg"
	"videoxt/infrastructure/filesystem"
	"videoxt/infrastructure/opencv"
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// Uploader sends an extraction's output to Google Drive
type Uploader interface {
	UploadArtifact(ctx context.Context, path string) (*appdist.ArtifactResult, error)
}

// ExtractDependencies bundles the adapters an extraction command runs with
type ExtractDependencies struct {
	Prober   extraction.Prober
	Editor   extraction.MediaEditor
	Frames   extraction.FrameWriter
	Files    extraction.FileChecker
	Progress extract.ProgressReporter
	Logger   *zap.Logger
	// Uploader is only used when the command asks for an upload
	Uploader Uploader
	// Notifier is only used when the command asks for share links by email
	Notifier Notifier
}

// RunOptions are the flags shared by every extraction command that do not
// belong to the request itself
type RunOptions struct {
	SkipValidation bool
	Upload         bool
	// Notify receives the share links after an upload
	Notify []notification.Recipient
}

// commonFlags are registered on every extraction command
type commonFlags struct {
	start          string
	stop           string
	destdir        string
	filename       string
	fps            string
	overwrite      bool
	verbose        bool
	skipValidation bool
	preset         string
	upload         bool
	folder         string
	notify         string
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "Start time in seconds or HH:MM:SS (default 0)")
	cmd.Flags().StringVarP(&f.stop, "stop", "S", "", "Stop time in seconds or HH:MM:SS (default end of video)")
	cmd.Flags().StringVarP(&f.destdir, "destdir", "d", "", "Directory to write output to (default next to the video)")
	cmd.Flags().StringVarP(&f.filename, "filename", "f", "", "Output file name without suffix (default video name)")
	cmd.Flags().StringVar(&f.fps, "fps", "", "Override the frame rate read from the video")
	cmd.Flags().BoolVarP(&f.overwrite, "overwrite", "o", false, "Overwrite an existing output instead of enumerating")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print the prepared request and result as JSON")
	cmd.Flags().BoolVar(&f.skipValidation, "skip-validation", false, "Trust the given options without validating them")
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "Start from a preset in the config file")
	cmd.Flags().BoolVar(&f.upload, "upload", false, "Upload the result to Google Drive")
	cmd.Flags().StringVar(&f.folder, "folder", "", "Google Drive folder ID (default google.folder_id)")
	cmd.Flags().StringVar(&f.notify, "notify", "", "Email the share links to these comma separated addresses (with --upload)")
}

// presetRequest returns the preset's request for method, or nil when no preset was named
func presetRequest(c *config.Config, name string, method extraction.Method) (extraction.Request, error) {
	if name == "" {
		return nil, nil
	}
	preset, err := config.NewConfigManager(c, cfgFile).GetPreset(name)
	if err != nil {
		return nil, err
	}
	req, err := preset.Request()
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", preset.Name, err)
	}
	if req.Method() != method {
		return nil, fmt.Errorf("preset %q is for %s, not %s", preset.Name, req.Method(), method)
	}
	return req, nil
}

// applyCommon overlays the flags the user set, then config defaults, onto opts
func applyCommon(cmd *cobra.Command, f *commonFlags, c *config.Config, opts *extraction.Options) error {
	flags := cmd.Flags()
	if flags.Changed("start") {
		opts.StartTime = f.start
	}
	if flags.Changed("stop") {
		opts.StopTime = f.stop
	}
	if flags.Changed("destdir") {
		opts.DestDir = f.destdir
	}
	if flags.Changed("filename") {
		opts.Filename = f.filename
	}
	if flags.Changed("overwrite") {
		opts.Overwrite = f.overwrite
	}
	if flags.Changed("fps") {
		fps, err := extraction.ValidFPS(f.fps)
		if err != nil {
			return err
		}
		opts.FPS = &fps
	}
	opts.Verbose = f.verbose

	if opts.DestDir == "" {
		opts.DestDir = c.Defaults.DestDir
	}
	if !flags.Changed("overwrite") && c.Defaults.Overwrite {
		opts.Overwrite = true
	}
	return nil
}

// parsed flag helpers that only assign when the flag was given

func floatFlag(cmd *cobra.Command, name, value string, parse func(string) (float64, error), dst **float64) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := parse(value)
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	*dst = &v
	return nil
}

func intFlag(cmd *cobra.Command, name, value string, parse func(string) (int, error), dst **int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := parse(value)
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	*dst = &v
	return nil
}

func dimensionsFlag(cmd *cobra.Command, value string, dst **extraction.Dimensions) error {
	if !cmd.Flags().Changed("dimensions") {
		return nil
	}
	d, err := extraction.ParseDimensions(value)
	if err != nil {
		return fmt.Errorf("--dimensions: %w", err)
	}
	*dst = &d
	return nil
}

func boolFlag(cmd *cobra.Command, name string, value bool, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

// buildExtractDependencies wires the production adapters from configuration.
// The returned cleanup releases any open capture.
func buildExtractDependencies(ctx context.Context, c *config.Config, f *commonFlags, method extraction.Method, out io.Writer) (ExtractDependencies, func(), error) {
	logger, err := newLogger(c)
	if err != nil {
		return ExtractDependencies{}, nil, err
	}

	ffmpegOpts := []ffmpeg.Option{ffmpeg.WithFFmpegPath(c.FFmpeg.Path), ffmpeg.WithLogger(logger)}
	deps := ExtractDependencies{
		Prober: ffmpeg.NewProber(
			ffmpeg.WithProbeTimeout(time.Duration(c.FFmpeg.ProbeTimeoutSeconds)*time.Second),
			ffmpeg.WithProberLogger(logger),
		),
		Editor: ffmpeg.NewEditor(ffmpegOpts...),
		Files:  filesystem.NewChecker(),
		Logger: logger,
	}

	cleanup := func() { _ = logger.Sync() }

	switch c.Frames.Backend {
	case config.BackendOpenCV:
		if !opencv.Available {
			return ExtractDependencies{}, nil, fmt.Errorf("frames.backend is opencv but this build has no OpenCV support; rebuild with -tags=opencv")
		}
		writer := opencv.NewFrameWriter(opencv.WithLogger(logger))
		deps.Frames = writer
		cleanup = func() {
			writer.Close()
			_ = logger.Sync()
		}
	default:
		deps.Frames = ffmpeg.NewFrameWriter(ffmpegOpts...)
	}

	if method == extraction.MethodFrames {
		deps.Progress = newProgressReporter(os.Stderr, "Extracting frames")
	}

	if f.upload {
		uploader, err := newUploadService(ctx, c, f.folder, out, logger)
		if err != nil {
			cleanup()
			return ExtractDependencies{}, nil, err
		}
		deps.Uploader = uploader
	}

	if f.notify != "" {
		notifier, err := newNotifier(ctx, c, out, logger)
		if err != nil {
			cleanup()
			return ExtractDependencies{}, nil, err
		}
		deps.Notifier = notifier
	}

	return deps, cleanup, nil
}

// checkNotify rejects --notify combinations before any Google client is
// built, since building one can start the OAuth consent flow
func checkNotify(f *commonFlags, c *config.Config) error {
	if f.notify == "" {
		return nil
	}
	if !f.upload {
		return errNotifyNeedsUpload
	}
	if !c.Email.Enabled() {
		return fmt.Errorf("share links requested but email is not configured: set email.from_address or run 'videoxt setup'")
	}
	return nil
}

var errNotifyNeedsUpload = fmt.Errorf("--notify needs --upload: only uploaded files have share links")

// runExtract loads configuration and production dependencies and runs req
func runExtract(cmd *cobra.Command, f *commonFlags, c *config.Config, method extraction.Method, path string, req extraction.Request) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := checkNotify(f, c); err != nil {
		return err
	}

	opts := RunOptions{
		SkipValidation: f.skipValidation,
		Upload:         f.upload,
	}
	if f.notify != "" {
		to, err := notification.ParseRecipients(f.notify)
		if err != nil {
			return fmt.Errorf("--notify: %w", err)
		}
		opts.Notify = to
	}

	deps, cleanup, err := buildExtractDependencies(ctx, c, f, method, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	return RunExtractWithDependencies(ctx, deps, method, path, req, opts, os.Stdout)
}

// RunExtractWithDependencies runs an extraction with injected dependencies (for testing)
func RunExtractWithDependencies(
	ctx context.Context,
	deps ExtractDependencies,
	method extraction.Method,
	path string,
	req extraction.Request,
	opts RunOptions,
	output OutputWriter,
) error {
	// Verify ffmpeg is available if the editor supports it
	if verifiable, ok := deps.Editor.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	if opts.Upload && deps.Uploader == nil {
		return fmt.Errorf("upload requested but Google Drive is not configured")
	}
	if len(opts.Notify) > 0 {
		if !opts.Upload {
			return errNotifyNeedsUpload
		}
		if deps.Notifier == nil {
			return fmt.Errorf("share links requested but email is not configured")
		}
	}

	serviceOpts := []extract.Option{extract.WithOutput(output)}
	if deps.Logger != nil {
		serviceOpts = append(serviceOpts, extract.WithLogger(deps.Logger))
	}
	if deps.Files != nil {
		serviceOpts = append(serviceOpts, extract.WithFileChecker(deps.Files))
	}
	if deps.Progress != nil {
		serviceOpts = append(serviceOpts, extract.WithProgress(deps.Progress))
	}
	service := extract.NewService(deps.Prober, deps.Editor, deps.Frames, serviceOpts...)

	fmt.Fprintf(output, "Extracting %s from %s...\n", method, path)

	result, err := service.Execute(ctx, method, path, req, extract.ExecuteOptions{SkipValidation: opts.SkipValidation})
	if err != nil {
		return err
	}

	fmt.Fprintln(output, result.Message)
	if !result.Success {
		return result.Err
	}
	fmt.Fprintf(output, "Created %s in %s\n", result.DestPath, result.ElapsedTime)

	if opts.Upload {
		fmt.Fprintln(output, "Uploading to Google Drive...")
		uploaded, err := deps.Uploader.UploadArtifact(ctx, result.DestPath)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		for _, f := range uploaded.Files {
			fmt.Fprintf(output, "  %s: %s\n", f.FileName, f.ShareableURL)
		}

		if len(opts.Notify) > 0 {
			notice := &ShareNotice{Notifier: deps.Notifier, To: opts.Notify}
			if err := notice.send(ctx, filepath.Base(result.DestPath), uploaded.Files, output); err != nil {
				return err
			}
		}
	}
	return nil
}
