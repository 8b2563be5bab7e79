package bridge

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/viant/mcpbridge/credential"
	"github.com/viant/mcpbridge/server"
	"github.com/viant/mcpbridge/stdio"
)

// Options are the command line options; each one can also come from the environment.
type Options struct {
	Port          int           `short:"p" long:"port" env:"PORT" default:"8000" description:"listen port"`
	Host          string        `long:"host" env:"MCP_BRIDGE_HOST" default:"0.0.0.0" description:"listen host"`
	AuthToken     string        `long:"auth-token" env:"MCP_AUTH_TOKEN" description:"shared bearer token, authorization is disabled when empty"`
	Credentials   string        `long:"credentials" env:"GOOGLE_CREDENTIALS_BASE64" description:"base64 encoded credentials file content"`
	CredentialEnv string        `long:"credential-env" env:"MCP_BRIDGE_CREDENTIAL_ENV" default:"GOOGLE_APPLICATION_CREDENTIALS" description:"subprocess variable receiving the credentials path"`
	CredentialDir string        `long:"credential-dir" env:"MCP_BRIDGE_CREDENTIAL_DIR" description:"credentials file directory, system temp dir when empty"`
	Timeout       time.Duration `long:"timeout" env:"MCP_BRIDGE_TIMEOUT" default:"30s" description:"subprocess reply timeout"`
	GracePeriod   time.Duration `long:"grace" env:"MCP_BRIDGE_GRACE" default:"5s" description:"time between SIGTERM and SIGKILL on shutdown"`
	MaxBodyBytes  int64         `long:"max-body" env:"MCP_BRIDGE_MAX_BODY" default:"10485760" description:"request body limit in bytes"`
	LogLevel      string        `long:"log-level" env:"MCP_BRIDGE_LOG_LEVEL" default:"info" description:"log level"`
	ConfigURL     string        `short:"c" long:"config" env:"MCP_BRIDGE_CONFIG" description:"YAML config URL"`

	// Command is the subprocess command line, taken from trailing arguments.
	Command []string `no-flag:"true"`
}

// Addr returns the listen address.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port: %v", o.Port)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %v", o.Timeout)
	}
	if o.GracePeriod < 0 {
		return fmt.Errorf("invalid grace period: %v", o.GracePeriod)
	}
	if o.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body size: %v", o.MaxBodyBytes)
	}
	if o.Credentials != "" && o.CredentialEnv == "" {
		return errors.New("credential env was empty")
	}
	return nil
}

// stdioConfig merges the command line over the file config.
func (o *Options) stdioConfig(config *Config) *stdio.Config {
	ret := &stdio.Config{
		Timeout:     o.Timeout,
		GracePeriod: o.GracePeriod,
	}
	if config != nil {
		ret.Command = config.Command
		ret.Args = append([]string(nil), config.Args...)
		ret.Dir = config.Dir
		if len(config.Env) > 0 {
			ret.Env = make(map[string]string, len(config.Env))
			for k, v := range config.Env {
				ret.Env[k] = v
			}
		}
	}
	if len(o.Command) > 0 {
		ret.Command = o.Command[0]
		ret.Args = append([]string(nil), o.Command[1:]...)
	}
	return ret
}

// withCredential points the subprocess at the credentials file.
func (o *Options) withCredential(config *stdio.Config, file *credential.File) {
	if file == nil {
		return
	}
	if config.Env == nil {
		config.Env = map[string]string{}
	}
	name := o.CredentialEnv
	if name == "" {
		name = credential.DefaultEnv
	}
	config.Env[name] = file.Path()
}

func (o *Options) cors(config *Config) *server.Cors {
	if config == nil {
		return nil
	}
	return config.Cors
}
