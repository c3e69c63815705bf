package api

type serverConfig struct {
	settings Settings
	sockets  Sockets
	tokens   *Tokens
	limiter  *RateLimiter
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithSettings sets the request limits and feature flags.
func WithSettings(s Settings) Option {
	return func(c *serverConfig) {
		c.settings = s
	}
}

// WithSockets enables the WebSocket endpoints.
func WithSockets(s Sockets) Option {
	return func(c *serverConfig) {
		if s != nil {
			c.sockets = s
		}
	}
}

// WithTokens enables the admin monitor socket.
func WithTokens(t *Tokens) Option {
	return func(c *serverConfig) {
		if t != nil {
			c.tokens = t
		}
	}
}

// WithRateLimiter replaces the limiter built from the settings.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.limiter = l
		}
	}
}
