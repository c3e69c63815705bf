package llm

import (
	"time"

	"go.uber.org/zap"

	"github.com/okian/cvscreen/pkg/logger"
)

const (
	defaultTimeout  = 45 * time.Second
	defaultMaxInput = 50_000
)

// settings are shared by the Parser and the Assistant.
type settings struct {
	log      logger.Logger
	timeout  time.Duration
	maxInput int
}

func newSettings(opts []Option) settings {
	s := settings{
		log:      logger.Wrap(zap.NewNop()),
		timeout:  defaultTimeout,
		maxInput: defaultMaxInput,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a Parser or an Assistant.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds a single model call.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxInput truncates text sent to the model to n characters.
func WithMaxInput(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxInput = n
		}
	}
}
