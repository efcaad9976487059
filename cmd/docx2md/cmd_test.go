// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtreit/document-converter/internal/convert"
	"github.com/rtreit/document-converter/internal/normalize"
	"github.com/rtreit/document-converter/pkg/types"
)

func TestCollectMarkdown(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.MD", "c.txt", "a.md.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))
	single := filepath.Join(dir, "c.txt")

	got, err := collectMarkdown([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.MD"),
		single,
	}, got)

	_, err = collectMarkdown([]string{filepath.Join(dir, "missing.md")})
	assert.Error(t, err)
}

func TestFixFiles(t *testing.T) {
	dir := t.TempDir()
	withAttrs := filepath.Join(dir, "a.md")
	plain := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(withAttrs, []byte("![](x.png){width=1in}"), 0o644))
	require.NoError(t, os.WriteFile(plain, []byte("# Plain"), 0o644))
	missing := filepath.Join(dir, "gone.md")

	var out bytes.Buffer
	failed := fixFiles(&out, []string{withAttrs, plain, missing}, normalize.Options{})

	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "fixed:     "+withAttrs+" (1 image attribute block(s) removed)")
	assert.Contains(t, out.String(), "unchanged: "+plain)
	assert.Contains(t, out.String(), "failed:    "+missing)

	data, err := os.ReadFile(withAttrs)
	require.NoError(t, err)
	assert.Equal(t, "![](x.png)", string(data))
}

func TestConversionConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("dir", "docs")
	viper.Set("no_fix", true)
	viper.Set("media_mode", "per-document")
	viper.Set("timeout", "90s")

	cfg := conversionConfig(nil)
	assert.Equal(t, "docs", cfg.Dir)
	assert.True(t, cfg.SkipFix)
	assert.False(t, cfg.NoBackup)
	assert.Equal(t, types.MediaPerDocument, cfg.MediaMode)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, types.DefaultMediaDir, cfg.MediaDir)
	assert.Equal(t, []string{types.DefaultExtension}, cfg.Extensions)
	assert.Equal(t, types.OverwriteAlways, cfg.Overwrite)

	cfg = conversionConfig([]string{"other"})
	assert.Equal(t, "other", cfg.Dir, "positional dir wins over config")
}

func TestConverterConfigDefaultsToPandoc(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("backend", "")
	assert.Equal(t, types.BackendPandoc, converterConfig().Backend)

	viper.Set("backend", "container")
	assert.Equal(t, types.BackendContainer, converterConfig().Backend)
}

func TestWithHint(t *testing.T) {
	err := withHint(fmt.Errorf("%w: pandoc", convert.ErrConverterUnavailable))
	assert.ErrorIs(t, err, convert.ErrConverterUnavailable)
	assert.Contains(t, err.Error(), "pandoc.org")

	other := errors.New("boom")
	assert.Equal(t, other, withHint(other))
}

func TestFormatRuns(t *testing.T) {
	var out bytes.Buffer
	formatRuns(&out, nil)
	assert.Equal(t, "No runs recorded.\n", out.String())

	out.Reset()
	started := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	formatRuns(&out, []types.Run{{ID: 7, Dir: "/docs", StartedAt: started, Converted: 3, Failed: 1}})
	assert.Contains(t, out.String(), "/docs")
	assert.Contains(t, out.String(), "1 runs")
}

func TestFormatRun(t *testing.T) {
	started := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	run := types.Run{
		ID:         3,
		Dir:        "/docs",
		Backend:    "pandoc",
		Version:    "pandoc 3.1.11",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Files: []types.FileResult{
			{Source: "/docs/a.docx", Status: types.ConversionDone, Fix: types.FixApplied},
			{Source: "/docs/b.docx", Status: types.ConversionFailed, Fix: types.FixNotRun, Error: "exit status 1"},
		},
	}

	var out bytes.Buffer
	formatRun(&out, run)
	s := out.String()
	assert.Contains(t, s, "Run 3: /docs")
	assert.Contains(t, s, "Converter: pandoc 3.1.11 (pandoc)")
	assert.Contains(t, s, "Duration:  1.5s")
	assert.Contains(t, s, "/docs/b.docx (exit status 1)")
}
