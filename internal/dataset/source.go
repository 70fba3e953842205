// Package dataset fetches and decodes coverage datasets.
package dataset

import (
	"context"
	"fmt"
	"os"
)

// Source yields the raw dataset document.
type Source interface {
	// Kind labels metrics, e.g. "file" or "redis".
	Kind() string
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

type FileSource struct {
	Path string
}

func (s FileSource) Kind() string { return "file" }

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}
