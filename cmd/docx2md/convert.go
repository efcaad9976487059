// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtreit/document-converter/internal/convert"
	"github.com/rtreit/document-converter/internal/ledger"
	"github.com/rtreit/document-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [dir]",
	Short: "Convert every .docx file in a directory to Markdown",
	Long: `Convert runs pandoc on each .docx file directly inside dir (default: the
current directory), writing <name>.md next to it and extracting images into
dir/images/. Afterwards the {width=...} attribute blocks pandoc appends to
image references are removed; the pre-edit file is kept as <name>.md.bak.

A missing directory or missing pandoc stops the run. A document that fails
to convert is reported and the run continues with the next one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig(args)
	convCfg := converterConfig()
	ctx := cmd.Context()

	conv, err := convert.NewConverter(ctx, convCfg)
	if err != nil {
		return withHint(err)
	}

	started := time.Now()
	result, err := convert.Run(ctx, conv, cfg, os.Stdout)
	if err != nil {
		return withHint(err)
	}
	if result.Total() == 0 {
		return nil
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		dir = cfg.Dir
	}
	run := result.Record(dir, string(convCfg.Backend), started, time.Now())

	if path := viper.GetString("report"); path != "" {
		if err := ledger.WriteReport(path, run); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
		}
	}
	if path := viper.GetString("ledger"); path != "" {
		if err := recordRun(ctx, path, run); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run in %s: %v\n", path, err)
		}
	}
	return nil
}

// conversionConfig merges the positional dir argument over viper settings.
func conversionConfig(args []string) types.ConversionConfig {
	cfg := types.ConversionConfig{
		Dir:        viper.GetString("dir"),
		Extensions: viper.GetStringSlice("extensions"),
		MediaDir:   viper.GetString("media_dir"),
		MediaMode:  types.MediaMode(viper.GetString("media_mode")),
		Overwrite:  types.OverwritePolicy(viper.GetString("overwrite")),
		SkipFix:    viper.GetBool("no_fix"),
		NoBackup:   viper.GetBool("no_backup"),
		Timeout:    viper.GetDuration("timeout"),
	}
	if len(args) > 0 {
		cfg.Dir = args[0]
	}
	return cfg.WithDefaults()
}

func converterConfig() types.ConverterConfig {
	cfg := types.ConverterConfig{
		Backend:    types.ConverterBackend(viper.GetString("backend")),
		PandocPath: viper.GetString("pandoc"),
		Image:      viper.GetString("image"),
	}
	if cfg.Backend == "" {
		cfg.Backend = types.BackendPandoc
	}
	return cfg
}

func recordRun(ctx context.Context, path string, run types.Run) error {
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	id, err := l.Record(ctx, run)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Recorded run %d in %s\n", id, path)
	return nil
}

// withHint adds installation advice to environment errors.
func withHint(err error) error {
	if errors.Is(err, convert.ErrConverterUnavailable) {
		return fmt.Errorf("%w\ninstall pandoc (https://pandoc.org/installing.html) or use --backend container", err)
	}
	return err
}

func init() {
	convertCmd.Flags().String("dir", ".", "directory containing the documents")
	convertCmd.Flags().Bool("no-fix", false, "skip removing image attribute blocks")
	convertCmd.Flags().Bool("no-backup", false, "do not write .bak files before fixing")
	convertCmd.Flags().String("backend", string(types.BackendPandoc), "converter backend: pandoc or container")
	convertCmd.Flags().String("pandoc", types.DefaultPandoc, "pandoc binary name or path")
	convertCmd.Flags().String("image", types.DefaultImage, "pandoc image for the container backend")
	convertCmd.Flags().String("media-dir", types.DefaultMediaDir, "media directory name, relative to dir")
	convertCmd.Flags().String("media-mode", string(types.MediaShared), "media layout: shared or per-document")
	convertCmd.Flags().String("overwrite", string(types.OverwriteAlways), "existing output policy: overwrite or skip")
	convertCmd.Flags().StringSlice("ext", []string{types.DefaultExtension}, "source file extensions")
	convertCmd.Flags().Duration("timeout", 0, "limit for a single conversion (0 = no limit)")
	convertCmd.Flags().String("report", "", "write a YAML (or .json) run report to this path")

	for key, flag := range map[string]string{
		"dir":        "dir",
		"no_fix":     "no-fix",
		"no_backup":  "no-backup",
		"backend":    "backend",
		"pandoc":     "pandoc",
		"image":      "image",
		"media_dir":  "media-dir",
		"media_mode": "media-mode",
		"overwrite":  "overwrite",
		"extensions": "ext",
		"timeout":    "timeout",
		"report":     "report",
	} {
		mustBind(key, convertCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}
