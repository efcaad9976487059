// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize strips the curly-brace attribute blocks that pandoc
// appends to Markdown image references, e.g. ![alt](img.png){width="3in"}.
package normalize

import (
	"fmt"
	"io"
	"os"
	"regexp"
)

// BackupSuffix is appended to a file path to name its pre-edit copy.
const BackupSuffix = ".bak"

// imageAttrPattern matches an image reference immediately followed by an
// attribute block. Group 1 is the image reference that is kept.
var imageAttrPattern = regexp.MustCompile(`(!\[[^\]]*\]\([^)]*\))\{[^}]*\}`)

// Options controls FixFile.
type Options struct {
	// Backup writes <path>.bak before the file is modified.
	Backup bool
}

// Result reports what FixFile did.
type Result struct {
	// Replacements is the number of attribute blocks removed.
	Replacements int

	// BackupPath is set when a backup was written.
	BackupPath string
}

// Changed reports whether the file content was rewritten.
func (r Result) Changed() bool {
	return r.Replacements > 0
}

// Normalize removes every attribute block that directly follows an image
// reference and returns the new text with the number of blocks removed.
// Applying it to its own output changes nothing.
func Normalize(text string) (string, int) {
	n := 0
	out := imageAttrPattern.ReplaceAllStringFunc(text, func(m string) string {
		n++
		return imageAttrPattern.FindStringSubmatch(m)[1]
	})
	return out, n
}

// FixFile normalizes the Markdown file at path in place. With opts.Backup
// set, the current content is copied to path+BackupSuffix first and a failed
// copy aborts before any read or write of the original. The file is only
// rewritten when at least one replacement was made.
func FixFile(path string, opts Options) (Result, error) {
	var res Result

	if opts.Backup {
		backup := path + BackupSuffix
		if err := copyFile(path, backup); err != nil {
			return res, fmt.Errorf("backing up %s: %w", path, err)
		}
		res.BackupPath = backup
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	fixed, n := Normalize(string(data))
	if n == 0 {
		return res, nil
	}

	if err := os.WriteFile(path, []byte(fixed), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	res.Replacements = n
	return res, nil
}

// copyFile copies src to dst, truncating any existing dst and keeping the
// source permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
