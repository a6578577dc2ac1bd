package mrw

import "time"

// Config controls the live sync client and the batching path.
type Config struct {
	URL              string
	Token            string // bearer token for the hello envelope
	User             string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	BatchInterval    time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     10 * time.Second,
		BatchInterval:    250 * time.Millisecond,
	}
}
