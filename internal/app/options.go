package service

import (
	"time"

	"github.com/okian/cvscreen/internal/adapters/mq/worker"
	"github.com/okian/cvscreen/internal/domain/engine"
	"github.com/okian/cvscreen/internal/domain/taxonomy"
	"github.com/okian/cvscreen/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of real-time analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the real-time analysis queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the in-flight fingerprint set.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShortlistSize caps the number of stored analyses.
func WithShortlistSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.shortlistSize = size
		}
	}
}

// WithTextLimits bounds the CV and job description lengths, in characters.
func WithTextLimits(maxCV, maxJob int) Option {
	return func(s *Service) {
		if maxCV > 0 {
			s.maxCVLength = maxCV
		}
		if maxJob > 0 {
			s.maxJobLength = maxJob
		}
	}
}

// WithEnhancedTimeout bounds the enhanced analysis path including the LLM call.
func WithEnhancedTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.enhancedTimeout = d
		}
	}
}

// WithTaxonomy replaces the built-in domain taxonomy.
func WithTaxonomy(tax *taxonomy.Taxonomy) Option {
	return func(s *Service) {
		if tax != nil {
			s.tax = tax
		}
	}
}

// WithThresholds sets the scoring thresholds.
func WithThresholds(th engine.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = th
	}
}

// WithCVParser enables LLM CV parsing for enhanced analyses. The regex
// extractor stays the fallback.
func WithCVParser(p CVParser) Option {
	return func(s *Service) {
		if p != nil {
			s.llm = p
		}
	}
}

// WithChatResponder answers free-form chat questions. Without one the chat
// handles commands and matching only.
func WithChatResponder(r ChatResponder) Option {
	return func(s *Service) {
		if r != nil {
			s.responder = r
		}
	}
}

// WithChatLimits bounds the turns kept per chat session and the number of
// sessions.
func WithChatLimits(history, sessions int) Option {
	return func(s *Service) {
		if history > 0 {
			s.chatHistory = history
		}
		if sessions > 0 {
			s.chatSessions = sessions
		}
	}
}

// WithNotifier sets where real-time progress goes, usually the WebSocket hub.
func WithNotifier(n worker.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithFeatures toggles the enhanced and real-time paths.
func WithFeatures(enhanced, realtime bool) Option {
	return func(s *Service) {
		s.enhancedEnabled = enhanced
		s.realtimeEnabled = realtime
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
