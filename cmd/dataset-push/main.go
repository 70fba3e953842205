package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mohammed-shakir/coverage-stats/internal/core/config"
	"github.com/mohammed-shakir/coverage-stats/internal/dataset"
)

// Uploads a dataset document to the redis key read by DATASET_SOURCE=redis.
func main() {
	os.Exit(run())
}

func run() int {
	timeout := flag.Duration("timeout", 10*time.Second, "overall timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dataset-push [-timeout 10s] <dataset.json>")
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "read .env:", err)
		return 1
	}
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raw, err := dataset.FileSource{Path: flag.Arg(0)}.Fetch(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	src, err := dataset.NewRedisSource(ctx, cfg.Dataset.RedisAddr, cfg.Dataset.RedisKey, dataset.WithDB(cfg.Dataset.RedisDB))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer func() { _ = src.Close() }()

	fp, err := src.Store(ctx, raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	fmt.Printf("stored %d bytes at %s (fingerprint %s)\n", len(raw), cfg.Dataset.RedisKey, fp)
	return 0
}
