package fakeproc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	// EnvMode selects the fake behaviour of a re-executed test binary.
	EnvMode = "MCP_BRIDGE_FAKE_PROCESS"
	// EnvDelay optionally delays every reply, e.g. "50ms".
	EnvDelay = "MCP_BRIDGE_FAKE_DELAY"
)

const (
	ModeEcho     = "echo"
	ModeReject   = "reject"
	ModeSilent   = "silent"
	ModeGarbage  = "garbage"
	ModeBlank    = "blank"
	ModeExit     = "exit"
	ModeOnce     = "once"
	ModeStubborn = "stubborn"
	// ModeCrash answers one request, then exits with CrashExitCode.
	ModeCrash = "crash"
)

// CrashExitCode is the exit status of ModeCrash.
const CrashExitCode = 3

// MethodEnv asks the fake for the value of the environment variable named by params.name.
const MethodEnv = "env"

// EnvResult is the result member of an env reply.
type EnvResult struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Process describes how to launch the fake.
type Process struct {
	Command string
	Args    []string
	Env     map[string]string
}

// Result is the result member of an echo reply.
type Result struct {
	PID    int    `json:"pid"`
	Seq    int    `json:"seq"`
	Method string `json:"method"`
}

// New returns a launch description running the current test binary in mode.
func New(mode string) *Process {
	return &Process{
		Command: os.Args[0],
		Args:    []string{"-test.run=^$"},
		Env:     map[string]string{EnvMode: mode},
	}
}

// WithDelay sets a reply delay.
func (p *Process) WithDelay(delay time.Duration) *Process {
	p.Env[EnvDelay] = delay.String()
	return p
}

// Main runs the fake and exits when the mode variable is set; otherwise it returns immediately.
func Main() {
	mode := os.Getenv(EnvMode)
	if mode == "" {
		return
	}
	var delay time.Duration
	if value := os.Getenv(EnvDelay); value != "" {
		delay, _ = time.ParseDuration(value)
	}
	os.Exit(Run(mode, delay, os.Stdin, os.Stdout, os.Stderr))
}

// Run serves requests from in until EOF and returns the process exit code.
func Run(mode string, delay time.Duration, in io.Reader, out io.Writer, errOut io.Writer) int {
	pid := os.Getpid()
	_, _ = fmt.Fprintf(errOut, "fake %s started pid=%d\n", mode, pid)
	switch mode {
	case ModeExit:
		return 0
	case ModeStubborn:
		signal.Ignore(syscall.SIGTERM)
	}
	reader := bufio.NewReader(in)
	seq := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if mode == ModeStubborn {
				time.Sleep(time.Hour) // only SIGKILL ends it
			}
			return 0
		}
		seq++
		if mode == ModeSilent {
			continue
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		reply := respond(mode, pid, seq, line)
		if _, err = out.Write(append(reply, '\n')); err != nil {
			return 1
		}
		switch mode {
		case ModeOnce:
			return 0
		case ModeCrash:
			return CrashExitCode
		}
	}
}

func respond(mode string, pid, seq int, line []byte) []byte {
	switch mode {
	case ModeGarbage:
		return []byte("this is not json")
	case ModeBlank:
		return []byte{}
	}
	var request struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params struct {
			Name string `json:"name"`
		} `json:"params"`
	}
	if err := json.Unmarshal(line, &request); err != nil {
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`)
	}
	id := string(request.ID)
	if id == "" {
		id = "null"
	}
	if mode == ModeReject && request.Method == "initialize" {
		return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":-32602,"message":"rejected"}}`, id))
	}
	if request.Method == MethodEnv {
		value, _ := json.Marshal(&EnvResult{Name: request.Params.Name, Value: os.Getenv(request.Params.Name)})
		return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":%s}`, id, value))
	}
	if request.Method == "ping" {
		return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":"pong"}`, id))
	}
	result, _ := json.Marshal(&Result{PID: pid, Seq: seq, Method: request.Method})
	return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":%s}`, id, result))
}
