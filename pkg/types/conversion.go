// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one input document.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// FixStatus indicates the outcome of the image-syntax cleanup for one output document.
type FixStatus string

const (
	FixNotRun    FixStatus = "not_run"
	FixUnchanged FixStatus = "unchanged"
	FixApplied   FixStatus = "fixed"
	FixFailed    FixStatus = "failed"
)

// ConverterBackend identifies how the external converter is invoked.
type ConverterBackend string

const (
	// BackendPandoc runs a pandoc binary found on PATH (or at an explicit path).
	BackendPandoc ConverterBackend = "pandoc"

	// BackendContainer runs the pandoc image through docker or podman.
	BackendContainer ConverterBackend = "container"
)

// MediaMode selects where extracted images land.
type MediaMode string

const (
	// MediaShared extracts images for every document into one directory.
	MediaShared MediaMode = "shared"

	// MediaPerDocument extracts images into <media>/<name>/ for each document.
	MediaPerDocument MediaMode = "per-document"
)

// OverwritePolicy controls what happens when an output document already exists.
type OverwritePolicy string

const (
	OverwriteAlways OverwritePolicy = "overwrite"
	OverwriteSkip   OverwritePolicy = "skip"
)

// ConversionConfig holds settings for a batch conversion run.
type ConversionConfig struct {
	// Dir is the directory scanned (non-recursively) for input documents.
	Dir string `json:"dir" yaml:"dir"`

	// Extensions lists the source extensions to pick up (default [".docx"]).
	Extensions []string `json:"extensions" yaml:"extensions"`

	// MediaDir is the media directory name relative to Dir (default "images").
	MediaDir string `json:"media_dir" yaml:"media_dir"`

	// MediaMode selects shared or per-document media extraction.
	MediaMode MediaMode `json:"media_mode" yaml:"media_mode"`

	// Overwrite selects the policy for pre-existing output documents.
	Overwrite OverwritePolicy `json:"overwrite" yaml:"overwrite"`

	// SkipFix disables the image-syntax cleanup pass.
	SkipFix bool `json:"skip_fix" yaml:"skip_fix"`

	// NoBackup disables the .bak copy taken before the cleanup pass.
	NoBackup bool `json:"no_backup" yaml:"no_backup"`

	// Timeout bounds a single converter invocation. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ConverterConfig holds settings for building the external converter.
type ConverterConfig struct {
	// Backend selects pandoc or container.
	Backend ConverterBackend `json:"backend" yaml:"backend"`

	// PandocPath is the pandoc binary name or path (default "pandoc").
	PandocPath string `json:"pandoc" yaml:"pandoc"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image"`
}

// Defaults used when a ConversionConfig field is left empty.
const (
	DefaultMediaDir  = "images"
	DefaultExtension = ".docx"
	DefaultImage     = "pandoc/core:latest"
	DefaultPandoc    = "pandoc"
)

// WithDefaults returns a copy of c with empty fields filled in.
func (c ConversionConfig) WithDefaults() ConversionConfig {
	if c.Dir == "" {
		c.Dir = "."
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{DefaultExtension}
	}
	if c.MediaDir == "" {
		c.MediaDir = DefaultMediaDir
	}
	if c.MediaMode == "" {
		c.MediaMode = MediaShared
	}
	if c.Overwrite == "" {
		c.Overwrite = OverwriteAlways
	}
	return c
}
