package textextract

// DefaultMaxExpandedMB bounds the decompressed size of a document part.
const DefaultMaxExpandedMB = 32

type settings struct {
	maxExpanded int64
}

// Option configures Extract.
type Option func(*settings)

// WithMaxExpandedMB caps how many megabytes a compressed document part may
// inflate to before extraction fails with ErrTooLarge.
func WithMaxExpandedMB(mb int) Option {
	return func(s *settings) {
		if mb > 0 {
			s.maxExpanded = int64(mb) * bytesPerMB
		}
	}
}

