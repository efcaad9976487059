// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs a folder of word-processor documents through an
// external converter, one file at a time, and cleans up the Markdown it
// produces. Conversion itself is delegated to a pluggable Converter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rtreit/document-converter/internal/normalize"
	"github.com/rtreit/document-converter/pkg/types"
)

// Environment errors abort the whole run before any file is touched.
var (
	ErrDirNotFound          = errors.New("directory not found")
	ErrConverterUnavailable = errors.New("converter not available")
)

// lockFilePrefix marks the owner files Word leaves next to open documents.
const lockFilePrefix = "~$"

// Job describes one conversion. Source, Output and MediaDir are relative to
// Dir so the converter can run with Dir as its working directory and write
// relative image links into the Markdown.
type Job struct {
	Dir      string
	Source   string
	Output   string
	MediaDir string
}

// Path joins a Job-relative path onto Dir.
func (j Job) Path(rel string) string {
	return filepath.Join(j.Dir, rel)
}

// Converter turns a source document into Markdown plus extracted media.
// Backends (local pandoc, containerized pandoc) implement this interface.
type Converter interface {
	// Name identifies the backend in status output.
	Name() string

	// Version returns the converter's version line. An error or an empty
	// string means the converter is not usable.
	Version(ctx context.Context) (string, error)

	// Convert runs one job and blocks until the converter exits. A non-zero
	// exit status is reported as an error.
	Convert(ctx context.Context, job Job) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Version   string
	Converted int
	Skipped   int
	Failed    int
	Fixed     int
	FixFailed int

	// MarkdownFiles and MediaFiles are end-of-run counts of what is on disk.
	// They are informational only.
	MarkdownFiles int
	MediaFiles    int

	Files []types.FileResult
}

// Total returns the number of input documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Record converts the result into a ledger/report entry.
func (r BatchResult) Record(dir, backend string, started, finished time.Time) types.Run {
	return types.Run{
		Dir:        dir,
		Backend:    backend,
		Version:    r.Version,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Converted:  r.Converted,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Files:      r.Files,
	}
}

// Run converts every matching document directly inside cfg.Dir. A missing
// directory or unusable converter returns an error wrapping ErrDirNotFound
// or ErrConverterUnavailable before anything is written. Per-document
// failures are printed to w and counted but never returned.
func Run(ctx context.Context, c Converter, cfg types.ConversionConfig, w io.Writer) (BatchResult, error) {
	cfg = cfg.WithDefaults()
	var result BatchResult

	info, err := os.Stat(cfg.Dir)
	if err != nil || !info.IsDir() {
		return result, fmt.Errorf("%w: %s", ErrDirNotFound, cfg.Dir)
	}

	version, err := c.Version(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrConverterUnavailable, c.Name(), err)
	}
	if version == "" {
		return result, fmt.Errorf("%w: %s reported no version", ErrConverterUnavailable, c.Name())
	}
	result.Version = version
	infof(w, "Using %s\n", version)

	sources, err := FindSources(cfg.Dir, cfg.Extensions)
	if err != nil {
		return result, err
	}
	if len(sources) == 0 {
		warnf(w, "No %s files found in %s\n", strings.Join(cfg.Extensions, "/"), cfg.Dir)
		return result, nil
	}
	infof(w, "Found %d document(s) in %s\n\n", len(sources), cfg.Dir)

	b := &batch{conv: c, cfg: cfg, w: w}
	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fr := b.convertOne(ctx, name)
		result.Files = append(result.Files, fr)
		switch fr.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
		switch fr.Fix {
		case types.FixApplied:
			result.Fixed++
		case types.FixFailed:
			result.FixFailed++
		}
	}

	result.MarkdownFiles = countMarkdown(cfg.Dir)
	result.MediaFiles = countFiles(filepath.Join(cfg.Dir, cfg.MediaDir))

	infof(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	if !cfg.SkipFix {
		infof(w, "Image syntax: %d file(s) fixed, %d failed\n", result.Fixed, result.FixFailed)
	}
	infof(w, "Markdown files in %s: %d\n", cfg.Dir, result.MarkdownFiles)
	infof(w, "Media files in %s: %d\n", filepath.Join(cfg.Dir, cfg.MediaDir), result.MediaFiles)

	return result, nil
}

// batch carries per-run state across documents.
type batch struct {
	conv       Converter
	cfg        types.ConversionConfig
	w          io.Writer
	mediaReady bool
}

// convertOne converts and fixes a single document. It never returns an
// error; the outcome is carried in the FileResult.
func (b *batch) convertOne(ctx context.Context, name string) types.FileResult {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	job := Job{
		Dir:      b.cfg.Dir,
		Source:   name,
		Output:   base + ".md",
		MediaDir: b.cfg.MediaDir,
	}
	if b.cfg.MediaMode == types.MediaPerDocument {
		job.MediaDir = filepath.Join(b.cfg.MediaDir, base)
	}

	fr := types.FileResult{
		Source:   job.Path(job.Source),
		Output:   job.Path(job.Output),
		MediaDir: job.Path(job.MediaDir),
		Status:   types.ConversionNone,
		Fix:      types.FixNotRun,
	}

	if b.cfg.Overwrite == types.OverwriteSkip {
		if _, err := os.Stat(fr.Output); err == nil {
			warnf(b.w, "skipped:   %s (%s already exists)\n", name, job.Output)
			fr.Status = types.ConversionSkipped
			return fr
		}
	}

	if err := b.ensureMedia(job); err != nil {
		return b.fail(fr, name, err)
	}

	infof(b.w, "converting: %s -> %s\n", name, job.Output)
	if err := b.runConverter(ctx, job); err != nil {
		return b.fail(fr, name, err)
	}
	fr.Status = types.ConversionDone
	okf(b.w, "converted: %s\n", name)

	if b.cfg.SkipFix {
		return fr
	}

	res, err := normalize.FixFile(fr.Output, normalize.Options{Backup: !b.cfg.NoBackup})
	fr.Backup = res.BackupPath
	if err != nil {
		warnf(b.w, "warning:   could not fix image syntax in %s: %v\n", job.Output, err)
		fr.Fix = types.FixFailed
		fr.Error = err.Error()
		return fr
	}
	fr.Replacements = res.Replacements
	if res.Changed() {
		fr.Fix = types.FixApplied
		okf(b.w, "fixed:     %s (%d image attribute block(s) removed)\n", job.Output, res.Replacements)
	} else {
		fr.Fix = types.FixUnchanged
		infof(b.w, "fixed:     %s (no changes needed)\n", job.Output)
	}
	return fr
}

// ensureMedia creates the media directory for job. In shared mode the
// directory is created once and reused for the rest of the run.
func (b *batch) ensureMedia(job Job) error {
	shared := b.cfg.MediaMode != types.MediaPerDocument
	if shared && b.mediaReady {
		return nil
	}
	if err := os.MkdirAll(job.Path(job.MediaDir), 0o755); err != nil {
		return fmt.Errorf("creating media directory: %w", err)
	}
	if shared {
		b.mediaReady = true
	}
	return nil
}

func (b *batch) runConverter(ctx context.Context, job Job) error {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	return b.conv.Convert(ctx, job)
}

func (b *batch) fail(fr types.FileResult, name string, err error) types.FileResult {
	errorf(b.w, "failed:    %s (%v)\n", name, err)
	fr.Status = types.ConversionFailed
	fr.Error = err.Error()
	return fr
}

// FindSources lists the regular files directly inside dir whose extension
// matches one of exts (case-insensitive), sorted by name. Word lock files
// are ignored.
func FindSources(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), lockFilePrefix) {
			continue
		}
		if hasExt(e.Name(), exts) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func hasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, want := range exts {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// countMarkdown returns the number of .md files directly inside dir.
func countMarkdown(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			n++
		}
	}
	return n
}

// countFiles returns the number of regular files under root, recursively.
// A missing root counts as zero.
func countFiles(root string) int {
	n := 0
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}
