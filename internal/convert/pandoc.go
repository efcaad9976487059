// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// stderrTail caps how much converter stderr is quoted in an error.
const stderrTail = 512

// commander abstracts command execution for testing.
type commander interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, dir, name string, args []string, stderr io.Writer) error
}

// osCommander is the production commander backed by os/exec.
type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (osCommander) Run(ctx context.Context, dir, name string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = stderr
	return cmd.Run()
}

// PandocConverter converts documents by running a local pandoc binary.
type PandocConverter struct {
	bin string
	cmd commander
}

// NewPandocConverter returns a converter that runs bin (a name looked up on
// PATH, or a path). An empty bin means "pandoc".
func NewPandocConverter(bin string) *PandocConverter {
	return newPandocConverter(bin, osCommander{})
}

func newPandocConverter(bin string, cmd commander) *PandocConverter {
	if bin == "" {
		bin = "pandoc"
	}
	return &PandocConverter{bin: bin, cmd: cmd}
}

// Name returns the backend name.
func (p *PandocConverter) Name() string { return p.bin }

// Version runs "pandoc --version" and returns its first line.
func (p *PandocConverter) Version(ctx context.Context) (string, error) {
	path, err := p.cmd.LookPath(p.bin)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", p.bin, err)
	}
	out, err := p.cmd.Output(ctx, path, "--version")
	if err != nil {
		return "", fmt.Errorf("running %s --version: %w", p.bin, err)
	}
	return firstLine(out), nil
}

// Convert runs pandoc with job.Dir as the working directory so extracted
// image paths in the Markdown stay relative.
func (p *PandocConverter) Convert(ctx context.Context, job Job) error {
	var stderr bytes.Buffer
	if err := p.cmd.Run(ctx, job.Dir, p.bin, pandocArgs(job), &stderr); err != nil {
		return commandError(p.bin, job.Source, err, stderr.Bytes())
	}
	return nil
}

// pandocArgs selects Markdown output, the media extraction directory, and
// the output file for job.
func pandocArgs(job Job) []string {
	return []string{
		job.Source,
		"-t", "markdown",
		"--extract-media=" + job.MediaDir,
		"-o", job.Output,
	}
}

// commandError wraps a converter failure with the tail of its stderr.
func commandError(bin, source string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if len(msg) > stderrTail {
		msg = "..." + msg[len(msg)-stderrTail:]
	}
	if msg == "" {
		return fmt.Errorf("%s failed on %s: %w", bin, source, err)
	}
	return fmt.Errorf("%s failed on %s: %w: %s", bin, source, err, msg)
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
