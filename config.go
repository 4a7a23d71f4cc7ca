package cosched

import (
	"errors"
	"fmt"
)

// Config is a serialisable scheduler configuration. It can be decoded from
// JSON, YAML or TOML; see DefaultConfig for the defaults.
type Config struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	StackSize     int    `json:"stackSize" yaml:"stackSize" toml:"stackSize"`
	MaxCoroutines int    `json:"maxCoroutines,omitempty" yaml:"maxCoroutines,omitempty" toml:"maxCoroutines,omitempty"`
}

// DefaultConfig returns a Config with a DefaultStackSize stack, no
// coroutine limit and a generated name.
func DefaultConfig() *Config {
	return &Config{StackSize: DefaultStackSize}
}

// Validate returns the joined errors of every invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.StackSize <= 0 {
		errs = append(errs, fmt.Errorf("stackSize must be > 0, got %d", c.StackSize))
	}
	if c.MaxCoroutines < 0 {
		errs = append(errs, fmt.Errorf("maxCoroutines must be >= 0, got %d", c.MaxCoroutines))
	}
	return errors.Join(errs...)
}

// Options converts c into scheduler options.
func (c *Config) Options() []Option {
	if c == nil {
		return nil
	}
	opts := []Option{
		WithStackSize(c.StackSize),
		WithMaxCoroutines(c.MaxCoroutines),
	}
	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}
	return opts
}

// NewFromConfig validates cfg and returns a scheduler built from it. Extra
// options are applied after the configuration. A nil cfg means
// DefaultConfig.
func NewFromConfig[V any](cfg *Config, opts ...Option) (*Scheduler[V], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cosched: invalid config: %w", err)
	}
	return New[V](append(cfg.Options(), opts...)...), nil
}
