//go:build mage

package main

import (
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts the documents in $DOCX2MD_DIR (default
// "."). Extra flags can be passed in $DOCX2MD_FLAGS.
func Convert() error {
	mg.Deps(Build)

	dir := os.Getenv("DOCX2MD_DIR")
	if dir == "" {
		dir = "."
	}
	args := []string{"convert", dir}
	if extra := os.Getenv("DOCX2MD_FLAGS"); extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	return sh.RunV("bin/docx2md", args...)
}
