// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/rtreit/document-converter/internal/container"
	"github.com/rtreit/document-converter/pkg/types"
)

// detectRuntime is swapped in tests.
var detectRuntime = container.DetectRuntime

// NewConverter builds the Converter selected by cfg.Backend.
func NewConverter(ctx context.Context, cfg types.ConverterConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendPandoc, "":
		return NewPandocConverter(cfg.PandocPath), nil
	case types.BackendContainer:
		rt, err := detectRuntime(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConverterUnavailable, err)
		}
		image := cfg.Image
		if image == "" {
			image = types.DefaultImage
		}
		return NewContainerConverter(rt, image), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q: use %s or %s",
			cfg.Backend, types.BackendPandoc, types.BackendContainer)
	}
}
