// Command cosched runs the reference coroutine scenario: two coroutines
// resumed alternately until both finish, with an optional config file,
// OpenTelemetry span output and transcript upload.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/do"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/webriots/cosched"
	"github.com/webriots/cosched/internal/configload"
	"github.com/webriots/cosched/internal/demo"
	"github.com/webriots/cosched/tracing"
)

const version = "0.1.0"

// Flags holds the command line.
type Flags struct {
	ConfigURL string
	StackSize int
	Trace     bool
	OutURL    string
	Verbose   bool
}

func main() {
	flags := &Flags{}
	flag.StringVar(&flags.ConfigURL, "config", "", "scheduler config URL (.yaml, .toml or .json)")
	flag.IntVar(&flags.StackSize, "stack", 0, "private stack size in bytes (overrides config)")
	flag.BoolVar(&flags.Trace, "trace", false, "print OpenTelemetry spans to stderr")
	flag.StringVar(&flags.OutURL, "out", "", "upload the transcript to this URL")
	flag.BoolVar(&flags.Verbose, "v", false, "debug logging")
	flag.Parse()

	if err := run(context.Background(), flags, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *Flags, stdout io.Writer) error {
	if flags.Trace {
		if err := tracing.Init("cosched", version, os.Stderr); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer func() { _ = tracing.Shutdown(ctx) }()
	}

	var transcript bytes.Buffer
	injector := newInjector(ctx, flags, io.MultiWriter(stdout, &transcript))
	defer func() { _ = injector.Shutdown() }()

	sched, err := do.Invoke[*cosched.Scheduler[demo.Message]](injector)
	if err != nil {
		return err
	}
	defer func() { _ = sched.Close() }()

	runner, err := do.Invoke[*demo.Runner](injector)
	if err != nil {
		return err
	}
	if _, err = runner.Run(); err != nil {
		return err
	}

	if flags.OutURL != "" {
		fs := do.MustInvoke[afs.Service](injector)
		if err = fs.Upload(ctx, flags.OutURL, file.DefaultFileOsMode, &transcript); err != nil {
			return fmt.Errorf("failed to upload transcript to %v: %w", flags.OutURL, err)
		}
	}
	return nil
}

// newInjector wires the config, logger, scheduler and runner.
func newInjector(ctx context.Context, flags *Flags, out io.Writer) *do.Injector {
	injector := do.New()
	do.ProvideValue(injector, flags)
	do.ProvideValue[afs.Service](injector, afs.New())

	do.Provide(injector, func(i *do.Injector) (*slog.Logger, error) {
		level := slog.LevelInfo
		if do.MustInvoke[*Flags](i).Verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
	})

	do.Provide(injector, func(i *do.Injector) (*cosched.Config, error) {
		f := do.MustInvoke[*Flags](i)
		cfg := cosched.DefaultConfig()
		if f.ConfigURL != "" {
			loaded, err := configload.New(do.MustInvoke[afs.Service](i)).Load(ctx, f.ConfigURL)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
		if f.StackSize != 0 {
			cfg.StackSize = f.StackSize
		}
		return cfg, nil
	})

	do.Provide(injector, func(i *do.Injector) (*cosched.Scheduler[demo.Message], error) {
		cfg, err := do.Invoke[*cosched.Config](i)
		if err != nil {
			return nil, err
		}
		return cosched.NewFromConfig[demo.Message](cfg,
			cosched.WithLogger(do.MustInvoke[*slog.Logger](i)),
			cosched.WithContext(ctx),
		)
	})

	do.Provide(injector, func(i *do.Injector) (*demo.Runner, error) {
		sched, err := do.Invoke[*cosched.Scheduler[demo.Message]](i)
		if err != nil {
			return nil, err
		}
		return demo.NewRunner(sched, out), nil
	})
	return injector
}
