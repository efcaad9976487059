// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtreit/document-converter/internal/normalize"
)

var fixCmd = &cobra.Command{
	Use:   "fix <file.md|dir>...",
	Short: "Remove image attribute blocks from existing Markdown files",
	Long: `Fix rewrites ![alt](src){...} to ![alt](src) in the given Markdown files.
A directory argument selects every .md file directly inside it. Unless
--no-backup is set, each file is copied to <file>.bak first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func runFix(cmd *cobra.Command, args []string) error {
	noBackup, _ := cmd.Flags().GetBool("no-backup")

	paths, err := collectMarkdown(args)
	if err != nil {
		return err
	}

	failed := fixFiles(os.Stdout, paths, normalize.Options{Backup: !noBackup})
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// fixFiles normalizes each path, printing one status line per file, and
// returns the number of failures.
func fixFiles(w io.Writer, paths []string, opts normalize.Options) int {
	failed := 0
	for _, p := range paths {
		res, err := normalize.FixFile(p, opts)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:    %s (%v)\n", p, err)
			failed++
		case res.Changed():
			fmt.Fprintf(w, "fixed:     %s (%d image attribute block(s) removed)\n", p, res.Replacements)
		default:
			fmt.Fprintf(w, "unchanged: %s\n", p)
		}
	}
	return failed
}

// collectMarkdown expands directory arguments to the .md files directly
// inside them. File arguments are passed through as given.
func collectMarkdown(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func init() {
	fixCmd.Flags().Bool("no-backup", false, "do not write .bak files before fixing")

	rootCmd.AddCommand(fixCmd)
}
