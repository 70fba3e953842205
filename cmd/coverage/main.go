package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mohammed-shakir/coverage-stats/internal/core/config"
	"github.com/mohammed-shakir/coverage-stats/internal/core/observability"
	"github.com/mohammed-shakir/coverage-stats/internal/core/server"
	"github.com/mohammed-shakir/coverage-stats/internal/dataset"
	"github.com/mohammed-shakir/coverage-stats/internal/logger"
	h3mapper "github.com/mohammed-shakir/coverage-stats/internal/mapper/h3"
	"github.com/mohammed-shakir/coverage-stats/internal/repl"
	"github.com/mohammed-shakir/coverage-stats/internal/service"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	serve := fs.Bool("serve", false, "serve the HTTP API instead of the interactive menu")
	source := fs.String("source", "", "dataset source: file or redis (overrides DATASET_SOURCE)")
	envFile := fs.String("env-file", ".env", "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", *envFile, err)
		return 1
	}
	cfg := config.FromEnv()
	if *source != "" {
		cfg.Dataset.Source = strings.ToLower(strings.TrimSpace(*source))
	}
	if fs.NArg() > 0 {
		cfg.Dataset.Path = fs.Arg(0)
	}
	if cfg.Dataset.Source == config.SourceFile && cfg.Dataset.Path == "" {
		fmt.Fprintln(stderr, "Usage: coverage [-serve] [-source file|redis] <dataset.json>")
		return 2
	}

	component := "repl"
	if *serve {
		component = "http"
	}
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Component: component,
	}, stderr)
	appLog := logger.NewSlog(&zl)
	observability.ExposeBuildInfo(Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		appLog.Error("cannot open dataset source", "err", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSrc()

	loader := dataset.NewLoader(appLog, cfg.Dataset.CacheSize)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	loaded, err := loader.Load(loadCtx, src)
	cancel()
	if err != nil {
		appLog.Error("cannot start without a dataset", "err", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	svc := service.New(appLog, loaded, service.Options{
		Picker: service.NewPicker(cfg.RandomSeed),
		Mapper: h3mapper.New(),
		H3Res:  cfg.H3Res,
		Loader: loader,
		Source: src,
	})

	if *serve {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go reloadOn(ctx, hup, appLog, svc, cfg.Dataset.LoadTimeout)
		appLog.Info("starting coverage api", "addr", cfg.Addr, "version", Version, "dataset", svc.Fingerprint())
		if err := server.Run(ctx, cfg, appLog, svc); err != nil {
			appLog.Error("server exited with error", "err", err)
			return 1
		}
		appLog.Info("server stopped")
		return 0
	}

	if err := repl.New(svc, appLog, stdin, stdout).Run(ctx); err != nil {
		appLog.Error("menu aborted", "err", err)
		return 1
	}
	return 0
}

// openSource returns the configured dataset source and a func releasing it.
func openSource(ctx context.Context, cfg config.Config) (dataset.Source, func(), error) {
	switch cfg.Dataset.Source {
	case config.SourceFile:
		return dataset.FileSource{Path: cfg.Dataset.Path}, func() {}, nil
	case config.SourceRedis:
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
		defer cancel()
		src, err := dataset.NewRedisSource(dialCtx, cfg.Dataset.RedisAddr, cfg.Dataset.RedisKey, dataset.WithDB(cfg.Dataset.RedisDB))
		if err != nil {
			return nil, nil, &dataset.LoadError{Source: "redis " + cfg.Dataset.RedisAddr, Err: err}
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return nil, nil, errors.New("unknown dataset source " + cfg.Dataset.Source)
	}
}

type reloader interface {
	Reload(ctx context.Context) (dataset.Loaded, error)
}

// reloadOn re-reads the dataset source for every signal on trigger until
// ctx ends.
func reloadOn(ctx context.Context, trigger <-chan os.Signal, log *slog.Logger, svc reloader, timeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-trigger:
			rctx, cancel := context.WithTimeout(ctx, timeout)
			if _, err := svc.Reload(rctx); err != nil {
				log.Warn("dataset reload failed, keeping current dataset", "signal", sig.String(), "err", err)
			}
			cancel()
		}
	}
}
