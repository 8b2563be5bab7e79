package bridge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

// ParseOptions parses args; everything from the first non-option on is the subprocess command.
func ParseOptions(args []string) (*Options, error) {
	options := &Options{}
	parser := flags.NewParser(options, flags.Default|flags.PassAfterNonOption)
	parser.Usage = "[OPTIONS] command [args...]"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	options.Command = rest
	return options, nil
}

// NewLogger builds a JSON logger at level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("bridge").Sugar(), nil
}

// Run parses args and serves until SIGINT or SIGTERM.
func Run(args []string) error {
	options, err := ParseOptions(args)
	if err != nil {
		return err
	}
	log, err := NewLogger(options.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	service, err := New(ctx, options, log)
	if err != nil {
		return err
	}
	return service.ListenAndServe(ctx)
}
