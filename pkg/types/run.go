// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileResult records what happened to one input document during a run.
type FileResult struct {
	// Source is the input document path.
	Source string `json:"source" yaml:"source"`

	// Output is the derived Markdown path.
	Output string `json:"output" yaml:"output"`

	// MediaDir is the directory images were extracted into.
	MediaDir string `json:"media_dir" yaml:"media_dir"`

	Status ConversionStatus `json:"status" yaml:"status"`
	Fix    FixStatus        `json:"fix" yaml:"fix"`

	// Replacements is the number of attribute blocks removed.
	Replacements int `json:"replacements" yaml:"replacements"`

	// Backup is the .bak path, when one was written.
	Backup string `json:"backup,omitempty" yaml:"backup,omitempty"`

	// Error holds the failure message for failed conversions or fixes.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run summarizes one batch conversion for the ledger and reports.
type Run struct {
	ID         int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Dir        string       `json:"dir" yaml:"dir"`
	Backend    string       `json:"backend" yaml:"backend"`
	Version    string       `json:"converter_version" yaml:"converter_version"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Converted  int          `json:"converted" yaml:"converted"`
	Skipped    int          `json:"skipped" yaml:"skipped"`
	Failed     int          `json:"failed" yaml:"failed"`
	Files      []FileResult `json:"files" yaml:"files"`
}
