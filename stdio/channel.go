package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type readResult struct {
	line []byte
	err  error
}

// Channel owns one child process and its stdin, stdout and stderr pipes.
type Channel struct {
	config *Config
	log    *zap.SugaredLogger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *os.File
	stderr  *os.File
	reader  *bufio.Reader
	pending chan readResult // outstanding line read, kept across timeouts
	done    chan struct{}   // closed once the process has been reaped
	exitErr error

	writeMu sync.Mutex // keeps documents from interleaving on stdin
}

// Option configures a Channel.
type Option func(c *Channel)

// WithLogger sets the channel logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Channel) {
		c.log = log
	}
}

// New creates a channel; the process is spawned by Start.
func New(config *Config, options ...Option) *Channel {
	ret := &Channel{
		config: config.WithDefaults(),
		log:    zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start spawns the child process. It is a no-op while the process is running;
// after the process exited it releases the old pipes and spawns a new one.
func (c *Channel) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning() {
		return nil
	}
	c.release(c.cmd)

	//nolint:gosec // the command comes from operator configuration
	cmd := exec.Command(c.config.Command, c.config.Args...)
	cmd.Dir = c.config.Dir
	cmd.Env = c.config.environ()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &SpawnError{Command: c.config.Command, Err: fmt.Errorf("stdin pipe: %w", err)}
	}
	stdoutReader, stdoutWriter, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return &SpawnError{Command: c.config.Command, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderrReader, stderrWriter, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		closeFiles(stdoutReader, stdoutWriter)
		return &SpawnError{Command: c.config.Command, Err: fmt.Errorf("stderr pipe: %w", err)}
	}
	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter
	if err = cmd.Start(); err != nil {
		_ = stdin.Close()
		closeFiles(stdoutReader, stdoutWriter, stderrReader, stderrWriter)
		c.log.Warnw("failed to spawn subprocess", "command", c.config.Command, "error", err)
		return &SpawnError{Command: c.config.Command, Err: err}
	}
	// the child holds its own copies of the write ends
	closeFiles(stdoutWriter, stderrWriter)

	c.cmd = cmd
	c.stdin = stdin
	c.stdout = stdoutReader
	c.stderr = stderrReader
	c.reader = bufio.NewReader(stdoutReader)
	c.pending = nil
	c.exitErr = nil
	c.done = make(chan struct{})
	go c.wait(cmd, c.done)
	go c.drainStderr(stderrReader, cmd.Process.Pid)
	c.log.Infow("subprocess started", "command", c.config.Command, "pid", cmd.Process.Pid)
	return nil
}

// Send writes message as one line and returns the next line the child prints.
func (c *Channel) Send(ctx context.Context, message json.RawMessage) (json.RawMessage, error) {
	payload, err := encodeLine(message)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	cmd, stdin := c.cmd, c.stdin
	c.mu.Unlock()
	if cmd == nil {
		return nil, &ClosedError{Err: ErrNotStarted}
	}
	pid := cmd.Process.Pid

	timer := time.NewTimer(c.config.Timeout)
	defer timer.Stop()
	if err = c.write(ctx, stdin, payload, timer.C, pid); err != nil {
		return nil, err
	}
	result := c.nextLine()
	select {
	case r := <-result:
		c.consumed(result)
		if r.err != nil {
			return nil, &ClosedError{PID: pid, Err: r.err}
		}
		return decodeLine(r.line)
	case <-timer.C:
		c.log.Warnw("subprocess reply timed out", "pid", pid, "timeout", c.config.Timeout)
		return nil, &TimeoutError{Duration: c.config.Timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Channel) write(ctx context.Context, stdin io.Writer, payload []byte, deadline <-chan time.Time, pid int) error {
	done := make(chan error, 1)
	go func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_, err := stdin.Write(payload)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return &ClosedError{PID: pid, Err: fmt.Errorf("write to stdin: %w", err)}
		}
		return nil
	case <-deadline:
		return &TimeoutError{Duration: c.config.Timeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nextLine returns the outstanding read, starting one if none is pending.
func (c *Channel) nextLine() chan readResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return c.pending
	}
	result := make(chan readResult, 1)
	reader := c.reader
	if reader == nil {
		result <- readResult{err: ErrNotStarted}
		return result
	}
	go func() {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			err = nil // a final unterminated line still counts
		}
		result <- readResult{line: line, err: err}
	}()
	c.pending = result
	return result
}

func (c *Channel) consumed(result chan readResult) {
	c.mu.Lock()
	if c.pending == result {
		c.pending = nil
	}
	c.mu.Unlock()
}

// Alive reports whether the child process is running.
func (c *Channel) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning()
}

// PID returns the process id of the current or last child, or 0.
func (c *Channel) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// ExitError returns the wait error of an exited child.
func (c *Channel) ExitError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitErr
}

// Cleanup closes stdin, sends SIGTERM, and kills the child if it is still
// running after the grace period. It is safe to call more than once.
func (c *Channel) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	cmd, stdin, done := c.cmd, c.stdin, c.done
	c.mu.Unlock()
	if cmd == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if stdin != nil {
		_ = stdin.Close()
	}
	if !isClosed(done) {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
			c.log.Debugw("failed to signal subprocess", "pid", pid, "error", err)
		}
		grace := time.NewTimer(c.config.GracePeriod)
		defer grace.Stop()
		select {
		case <-done:
		case <-grace.C:
			c.kill(cmd, done)
		case <-ctx.Done():
			c.kill(cmd, done)
		}
	}
	c.mu.Lock()
	c.release(cmd)
	c.mu.Unlock()
	c.log.Infow("subprocess stopped", "pid", pid)
	return nil
}

func (c *Channel) kill(cmd *exec.Cmd, done chan struct{}) {
	c.log.Warnw("subprocess ignored SIGTERM, killing", "pid", cmd.Process.Pid)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		c.log.Debugw("failed to kill subprocess", "pid", cmd.Process.Pid, "error", err)
	}
	<-done
}

// release closes the pipes of cmd if it is still the current process. Callers hold mu.
func (c *Channel) release(cmd *exec.Cmd) {
	if cmd == nil || c.cmd != cmd {
		return
	}
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	closeFiles(c.stdout, c.stderr)
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil
	c.stderr = nil
	c.reader = nil
	c.pending = nil
}

func (c *Channel) isRunning() bool {
	return c.cmd != nil && !isClosed(c.done)
}

func (c *Channel) wait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	c.mu.Lock()
	if c.cmd == cmd {
		c.exitErr = err
	}
	c.mu.Unlock()
	c.log.Infow("subprocess exited", "pid", cmd.Process.Pid, "error", err)
	close(done)
}

func (c *Channel) drainStderr(stderr io.Reader, pid int) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		c.log.Debugw("subprocess stderr", "pid", pid, "line", scanner.Text())
	}
}

func encodeLine(message json.RawMessage) ([]byte, error) {
	buffer := bytes.Buffer{}
	if err := json.Compact(&buffer, message); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

func decodeLine(line []byte) (json.RawMessage, error) {
	line = bytes.TrimRight(line, "\r\n")
	var decoded interface{}
	if err := json.Unmarshal(line, &decoded); err != nil {
		return nil, &ProtocolError{Line: string(line), Err: err}
	}
	return json.RawMessage(line), nil
}

func isClosed(ch chan struct{}) bool {
	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func closeFiles(files ...*os.File) {
	for _, file := range files {
		if file != nil {
			_ = file.Close()
		}
	}
}
