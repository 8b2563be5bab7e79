package stdio

import (
	"errors"
	"os"
	"sort"
	"time"
)

const (
	// DefaultTimeout bounds the wait for a reply line.
	DefaultTimeout = 30 * time.Second
	// DefaultGracePeriod is the time between SIGTERM and SIGKILL on cleanup.
	DefaultGracePeriod = 5 * time.Second
)

// Config describes the child process.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Env         map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`
	GracePeriod time.Duration     `yaml:"gracePeriod" json:"gracePeriod"`
}

// Validate checks that a command was configured.
func (c *Config) Validate() error {
	if c == nil || c.Command == "" {
		return errors.New("subprocess command was empty")
	}
	if c.Timeout < 0 || c.GracePeriod < 0 {
		return errors.New("subprocess timeouts must not be negative")
	}
	return nil
}

// WithDefaults returns a copy with zero durations replaced by defaults.
func (c *Config) WithDefaults() *Config {
	ret := *c
	if ret.Timeout == 0 {
		ret.Timeout = DefaultTimeout
	}
	if ret.GracePeriod == 0 {
		ret.GracePeriod = DefaultGracePeriod
	}
	if len(c.Env) > 0 {
		ret.Env = make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			ret.Env[k] = v
		}
	}
	return &ret
}

// environ returns the bridge environment extended with Env, in a stable order.
func (c *Config) environ() []string {
	if len(c.Env) == 0 {
		return nil // inherit
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}
