package opencv

import "go.uber.org/zap"

// Option is a functional option for configuring FrameWriter
type Option func(*settings)

type settings struct {
	logger *zap.Logger
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
