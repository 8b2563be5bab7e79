package bridge

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/mcpbridge/credential"
	"github.com/viant/mcpbridge/stdio"
)

func TestParseOptions(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		env         map[string]string
		expect      func(t *testing.T, options *Options)
	}{
		{
			description: "defaults",
			args:        []string{"node", "server.js"},
			expect: func(t *testing.T, options *Options) {
				assert.Equal(t, 8000, options.Port)
				assert.Equal(t, "0.0.0.0:8000", options.Addr())
				assert.Equal(t, 30*time.Second, options.Timeout)
				assert.Equal(t, 5*time.Second, options.GracePeriod)
				assert.EqualValues(t, 10485760, options.MaxBodyBytes)
				assert.Equal(t, "GOOGLE_APPLICATION_CREDENTIALS", options.CredentialEnv)
				assert.Equal(t, "info", options.LogLevel)
				assert.Equal(t, []string{"node", "server.js"}, options.Command)
			},
		},
		{
			description: "flags before command, command flags untouched",
			args:        []string{"-p", "9000", "--auth-token", "s3cret", "--timeout", "2s", "npx", "-y", "@scope/server", "--port", "1"},
			expect: func(t *testing.T, options *Options) {
				assert.Equal(t, 9000, options.Port)
				assert.Equal(t, "s3cret", options.AuthToken)
				assert.Equal(t, 2*time.Second, options.Timeout)
				assert.Equal(t, []string{"npx", "-y", "@scope/server", "--port", "1"}, options.Command)
			},
		},
		{
			description: "environment",
			args:        []string{"server"},
			env: map[string]string{
				"PORT":                      "8123",
				"MCP_AUTH_TOKEN":            "from-env",
				"GOOGLE_CREDENTIALS_BASE64": "e30=",
				"MCP_BRIDGE_GRACE":          "250ms",
			},
			expect: func(t *testing.T, options *Options) {
				assert.Equal(t, 8123, options.Port)
				assert.Equal(t, "from-env", options.AuthToken)
				assert.Equal(t, "e30=", options.Credentials)
				assert.Equal(t, 250*time.Millisecond, options.GracePeriod)
			},
		},
		{
			description: "flag overrides environment",
			args:        []string{"--port", "8200", "server"},
			env:         map[string]string{"PORT": "8123"},
			expect: func(t *testing.T, options *Options) {
				assert.Equal(t, 8200, options.Port)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}
			options, err := ParseOptions(testCase.args)
			require.NoError(t, err)
			testCase.expect(t, options)
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	valid := func() *Options {
		return &Options{Port: 8000, Timeout: time.Second, GracePeriod: time.Second, MaxBodyBytes: 1, CredentialEnv: "X"}
	}
	assert.NoError(t, valid().Validate())

	var testCases = []struct {
		description string
		mutate      func(o *Options)
	}{
		{description: "port", mutate: func(o *Options) { o.Port = 70000 }},
		{description: "timeout", mutate: func(o *Options) { o.Timeout = 0 }},
		{description: "grace", mutate: func(o *Options) { o.GracePeriod = -time.Second }},
		{description: "body", mutate: func(o *Options) { o.MaxBodyBytes = 0 }},
		{description: "credential env", mutate: func(o *Options) { o.Credentials = "e30="; o.CredentialEnv = "" }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			options := valid()
			testCase.mutate(options)
			assert.Error(t, options.Validate())
		})
	}
}

func TestOptions_StdioConfig(t *testing.T) {
	options := &Options{Timeout: 3 * time.Second, GracePeriod: time.Second}
	config := &Config{Command: "node", Args: []string{"a.js"}, Env: map[string]string{"A": "1"}, Dir: "/srv"}

	fromFile := options.stdioConfig(config)
	assert.Equal(t, "node", fromFile.Command)
	assert.Equal(t, []string{"a.js"}, fromFile.Args)
	assert.Equal(t, "/srv", fromFile.Dir)
	assert.Equal(t, 3*time.Second, fromFile.Timeout)
	fromFile.Env["B"] = "2"
	assert.NotContains(t, config.Env, "B")

	options.Command = []string{"python", "-m", "server"}
	fromArgs := options.stdioConfig(config)
	assert.Equal(t, "python", fromArgs.Command)
	assert.Equal(t, []string{"-m", "server"}, fromArgs.Args)
	assert.Equal(t, "1", fromArgs.Env["A"])

	assert.Empty(t, (&Options{}).stdioConfig(nil).Command)
}

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(location, []byte(`command: node
args: [server.js, --stdio]
env:
  LOG_LEVEL: debug
dir: /srv/app
cors:
  allowOrigins: ["https://app.example.com"]
  allowHeaders: ["*"]
`), 0o644))

	config, err := LoadConfig(context.Background(), afs.New(), location)
	require.NoError(t, err)
	assert.Equal(t, "node", config.Command)
	assert.Equal(t, []string{"server.js", "--stdio"}, config.Args)
	assert.Equal(t, map[string]string{"LOG_LEVEL": "debug"}, config.Env)
	assert.Equal(t, "/srv/app", config.Dir)
	require.NotNil(t, config.Cors)
	assert.Equal(t, []string{"https://app.example.com"}, config.Cors.AllowOrigins)

	_, err = LoadConfig(context.Background(), afs.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, log)
	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestOptions_WithCredential(t *testing.T) {
	ctx := context.Background()
	file, err := credential.Materialize(ctx, base64.StdEncoding.EncodeToString([]byte(`{}`)), t.TempDir())
	require.NoError(t, err)
	defer func() { _ = file.Remove(ctx) }()

	var testCases = []struct {
		description   string
		credentialEnv string
		env           map[string]string
		file          *credential.File
		expectName    string
		expectEnv     map[string]string
	}{
		{description: "default variable", file: file, expectName: credential.DefaultEnv},
		{description: "custom variable", credentialEnv: "MY_CREDENTIALS", file: file, expectName: "MY_CREDENTIALS"},
		{description: "keeps file env", credentialEnv: "MY_CREDENTIALS", env: map[string]string{"A": "1"}, file: file, expectName: "MY_CREDENTIALS", expectEnv: map[string]string{"A": "1"}},
		{description: "no credentials", env: map[string]string{"A": "1"}, expectEnv: map[string]string{"A": "1"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			options := &Options{CredentialEnv: testCase.credentialEnv}
			config := &stdio.Config{Command: "server", Env: testCase.env}
			options.withCredential(config, testCase.file)
			if testCase.file == nil {
				assert.Equal(t, testCase.expectEnv, config.Env)
				return
			}
			assert.Equal(t, testCase.file.Path(), config.Env[testCase.expectName])
			for k, v := range testCase.expectEnv {
				assert.Equal(t, v, config.Env[k])
			}
		})
	}
}
