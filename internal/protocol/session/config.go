package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/fileget/internal/protocol/fsp"
)

const (
	DefaultTimeout = 31 * time.Second
	DefaultAgent   = "fileget"
)

var (
	ErrInvalidTimeout = errors.New("session: timeout must be positive")
	ErrInvalidAgent   = errors.New("session: agent must be a non-empty single line")
	ErrInvalidLimits  = errors.New("session: limits must be positive")
)

// Config defines the bounds shared by the name-server and file-server exchanges.
type Config struct {
	// Timeout bounds one whole exchange: dial, request, and full response.
	Timeout time.Duration
	Agent   string
	Limits  fsp.Limits
}

func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
		Agent:   DefaultAgent,
		Limits:  fsp.DefaultLimits(),
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if strings.TrimSpace(c.Agent) == "" {
		c.Agent = def.Agent
	}
	if c.Limits.MaxLineBytes <= 0 {
		c.Limits.MaxLineBytes = def.Limits.MaxLineBytes
	}
	if c.Limits.MaxBodyBytes <= 0 {
		c.Limits.MaxBodyBytes = def.Limits.MaxBodyBytes
	}
	return c
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTimeout, c.Timeout)
	}
	if strings.TrimSpace(c.Agent) == "" || strings.ContainsAny(c.Agent, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAgent, c.Agent)
	}
	if c.Limits.MaxLineBytes <= 0 || c.Limits.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidLimits, c.Limits)
	}
	return nil
}
