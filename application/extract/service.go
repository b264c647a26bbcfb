package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"videoxt/domain/extraction"
)

const (
	msgSuccess   = "Extraction successful."
	msgFailed    = "Extraction failed: "
	msgCancelled = "Extraction cancelled."
)

// Result describes the outcome of one extraction
type Result struct {
	ID          uuid.UUID           `json:"id"`
	Success     bool                `json:"success"`
	Method      extraction.Method   `json:"method"`
	Message     string              `json:"message"`
	DestPath    string              `json:"destpath,omitempty"`
	Elapsed     time.Duration       `json:"-"`
	ElapsedTime string              `json:"elapsed_time"`
	Request     extraction.Prepared `json:"request"`
	Video       *extraction.Video   `json:"-"`
	Err         error               `json:"-"`
}

// ExecuteOptions tune a single Execute call
type ExecuteOptions struct {
	// SkipValidation trusts the request options as given
	SkipValidation bool
}

// ProgressReporter receives frame extraction progress
type ProgressReporter interface {
	Start(total int)
	Advance()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Advance()  {}
func (nopProgress) Finish()   {}

// Service validates and prepares extraction requests and runs them
type Service struct {
	prober   extraction.Prober
	editor   extraction.MediaEditor
	frames   extraction.FrameWriter
	files    extraction.FileChecker
	logger   *zap.Logger
	output   io.Writer
	progress ProgressReporter
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOutput sets where verbose JSON is printed
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.output = w
		}
	}
}

// WithProgress sets the frame progress reporter
func WithProgress(p ProgressReporter) Option {
	return func(s *Service) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithFileChecker sets the checker used to confirm outputs exist
func WithFileChecker(fc extraction.FileChecker) Option {
	return func(s *Service) {
		if fc != nil {
			s.files = fc
		}
	}
}

// WithClock sets the time source used for elapsed time
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type osFileChecker struct{}

func (osFileChecker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NewService creates a new Service
func NewService(prober extraction.Prober, editor extraction.MediaEditor, frames extraction.FrameWriter, opts ...Option) *Service {
	s := &Service{
		prober:   prober,
		editor:   editor,
		frames:   frames,
		files:    osFileChecker{},
		logger:   zap.NewNop(),
		output:   io.Discard,
		progress: nopProgress{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute reads the video at path, prepares req against it and runs the extraction.
// A nil req uses the defaults of method. Video and preparation failures are
// returned as errors; failures while extracting are reported in the Result.
func (s *Service) Execute(ctx context.Context, method extraction.Method, path string, req extraction.Request, opts ExecuteOptions) (*Result, error) {
	started := s.now()

	if req == nil {
		var err error
		if req, err = extraction.NewRequest(method); err != nil {
			return nil, err
		}
	}
	if req.Method() != method {
		return nil, fmt.Errorf("%w: %s request given for %s extraction", extraction.ErrInvalidMethod, req.Method(), method)
	}

	video, err := extraction.NewVideo(ctx, path, s.prober)
	if err != nil {
		return nil, err
	}

	if opts.SkipValidation {
		req.SkipValidation()
	}
	prepared, err := req.Prepare(video)
	if err != nil {
		return nil, err
	}

	if prepared.IsVerbose() {
		s.printJSON(prepared)
	}

	s.logger.Info("extraction started",
		zap.String("method", method.String()),
		zap.String("video", video.Path),
		zap.String("destination", prepared.Destination()),
	)

	runErr := s.run(ctx, prepared)

	result := &Result{
		ID:      uuid.New(),
		Method:  method,
		Request: prepared,
		Video:   video,
		Err:     runErr,
	}
	switch {
	case runErr == nil:
		result.Success = true
		result.Message = msgSuccess
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		result.Message = msgCancelled
	default:
		result.Message = msgFailed + runErr.Error()
	}

	if s.files.Exists(prepared.Destination()) {
		result.DestPath = prepared.Destination()
	}
	result.Elapsed = s.now().Sub(started)
	result.ElapsedTime = result.Elapsed.Round(time.Millisecond).String()

	if runErr != nil {
		s.logger.Warn("extraction did not complete",
			zap.String("method", method.String()),
			zap.String("result_id", result.ID.String()),
			zap.Error(runErr),
		)
	} else {
		s.logger.Info("extraction finished",
			zap.String("method", method.String()),
			zap.String("result_id", result.ID.String()),
			zap.Duration("elapsed", result.Elapsed),
		)
	}

	if prepared.IsVerbose() {
		s.printJSON(result)
	}

	return result, nil
}

// Extract resolves methodName and executes req with validation
func (s *Service) Extract(ctx context.Context, methodName, path string, req extraction.Request) (*Result, error) {
	method, err := extraction.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, method, path, req, ExecuteOptions{})
}

// ExtractAudio extracts the audio track of the video at path
func (s *Service) ExtractAudio(ctx context.Context, path string, req *extraction.AudioRequest) (*Result, error) {
	if req == nil {
		req = &extraction.AudioRequest{}
	}
	return s.Execute(ctx, extraction.MethodAudio, path, req, ExecuteOptions{})
}

// ExtractClip extracts a clip of the video at path
func (s *Service) ExtractClip(ctx context.Context, path string, req *extraction.ClipRequest) (*Result, error) {
	if req == nil {
		req = &extraction.ClipRequest{}
	}
	return s.Execute(ctx, extraction.MethodClip, path, req, ExecuteOptions{})
}

// ExtractFrames saves frames of the video at path as images
func (s *Service) ExtractFrames(ctx context.Context, path string, req *extraction.FramesRequest) (*Result, error) {
	if req == nil {
		req = &extraction.FramesRequest{}
	}
	return s.Execute(ctx, extraction.MethodFrames, path, req, ExecuteOptions{})
}

// ExtractGif creates a gif from the video at path
func (s *Service) ExtractGif(ctx context.Context, path string, req *extraction.GifRequest) (*Result, error) {
	if req == nil {
		req = &extraction.GifRequest{}
	}
	return s.Execute(ctx, extraction.MethodGif, path, req, ExecuteOptions{})
}

func (s *Service) run(ctx context.Context, prepared extraction.Prepared) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch p := prepared.(type) {
	case *extraction.PreparedAudio:
		return s.editor.ExtractAudio(ctx, p)
	case *extraction.PreparedClip:
		return s.editor.ExtractClip(ctx, p)
	case *extraction.PreparedGif:
		return s.editor.ExtractGif(ctx, p)
	case *extraction.PreparedFrames:
		return s.extractFrames(ctx, p)
	default:
		return fmt.Errorf("%w: %T", extraction.ErrInvalidMethod, prepared)
	}
}

// extractFrames walks the range from the start frame in capture rate steps,
// writing one image per step until the expected count is reached or the
// stream ends
func (s *Service) extractFrames(ctx context.Context, p *extraction.PreparedFrames) error {
	if err := os.MkdirAll(p.DestPath, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", extraction.ErrFrameWrite, p.DestPath, err)
	}

	s.progress.Start(p.ImagesExpected)
	defer s.progress.Finish()

	written := 0
	for frame := p.Range.StartFrame; written < p.ImagesExpected; frame += p.CaptureRate {
		if err := ctx.Err(); err != nil {
			return err
		}

		dst, err := p.ImagePath(frame)
		if err != nil {
			return err
		}

		if err := s.frames.WriteFrame(ctx, p, frame, dst); err != nil {
			if errors.Is(err, extraction.ErrFrameRead) {
				s.logger.Debug("frame stream ended early",
					zap.Int("frame", frame),
					zap.Int("written", written),
					zap.Int("expected", p.ImagesExpected),
				)
				break
			}
			return err
		}

		written++
		s.progress.Advance()
	}

	s.logger.Info("frames written",
		zap.Int("count", written),
		zap.String("directory", p.DestPath),
	)
	return nil
}

func (s *Service) printJSON(v interface{}) {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Warn("failed to encode verbose output", zap.Error(err))
		return
	}
	fmt.Fprintln(s.output, string(data))
}
