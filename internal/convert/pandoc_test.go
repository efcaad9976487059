// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommander records calls and returns configured responses.
type mockCommander struct {
	onPath     map[string]bool
	versionOut string
	versionErr error
	runFunc    func(dir, name string, args []string, stderr io.Writer) error

	outputCalls []string
}

func (m *mockCommander) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (m *mockCommander) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	m.outputCalls = append(m.outputCalls, name+" "+strings.Join(args, " "))
	return []byte(m.versionOut), m.versionErr
}

func (m *mockCommander) Run(_ context.Context, dir, name string, args []string, stderr io.Writer) error {
	if m.runFunc != nil {
		return m.runFunc(dir, name, args, stderr)
	}
	return nil
}

func TestPandocVersion(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *mockCommander
		want    string
		wantErr string
	}{
		{
			name: "first line of version output",
			cmd: &mockCommander{
				onPath:     map[string]bool{"pandoc": true},
				versionOut: "pandoc 3.1.11\nFeatures: +server +lua\nScripting engine: Lua 5.4\n",
			},
			want: "pandoc 3.1.11",
		},
		{
			name:    "not on PATH",
			cmd:     &mockCommander{},
			wantErr: "pandoc not found on PATH",
		},
		{
			name: "version command fails",
			cmd: &mockCommander{
				onPath:     map[string]bool{"pandoc": true},
				versionErr: errors.New("exit status 1"),
			},
			wantErr: "running pandoc --version",
		},
		{
			name: "empty output yields empty version",
			cmd: &mockCommander{
				onPath: map[string]bool{"pandoc": true},
			},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPandocConverter("", tt.cmd)
			got, err := p.Version(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPandocVersionUsesResolvedPath(t *testing.T) {
	cmd := &mockCommander{onPath: map[string]bool{"pandoc-3": true}, versionOut: "pandoc 3.2"}
	p := newPandocConverter("pandoc-3", cmd)

	_, err := p.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/pandoc-3 --version"}, cmd.outputCalls)
	assert.Equal(t, "pandoc-3", p.Name())
}

func TestPandocConvert(t *testing.T) {
	var gotDir, gotName string
	var gotArgs []string
	cmd := &mockCommander{
		runFunc: func(dir, name string, args []string, _ io.Writer) error {
			gotDir, gotName, gotArgs = dir, name, args
			return nil
		},
	}
	p := newPandocConverter("", cmd)

	err := p.Convert(context.Background(), Job{
		Dir:      "/docs",
		Source:   "report.docx",
		Output:   "report.md",
		MediaDir: "images",
	})
	require.NoError(t, err)
	assert.Equal(t, "/docs", gotDir)
	assert.Equal(t, "pandoc", gotName)
	assert.Equal(t, []string{"report.docx", "-t", "markdown", "--extract-media=images", "-o", "report.md"}, gotArgs)
}

func TestPandocConvertFailure(t *testing.T) {
	cmd := &mockCommander{
		runFunc: func(_, _ string, _ []string, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, "pandoc: report.docx: openBinaryFile: does not exist\n")
			return errors.New("exit status 1")
		},
	}
	p := newPandocConverter("", cmd)

	err := p.Convert(context.Background(), Job{Dir: "/docs", Source: "report.docx", Output: "report.md", MediaDir: "images"})
	require.Error(t, err)
	assert.Equal(t, "pandoc failed on report.docx: exit status 1: pandoc: report.docx: openBinaryFile: does not exist", err.Error())
}

func TestCommandError(t *testing.T) {
	base := errors.New("exit status 2")

	err := commandError("pandoc", "a.docx", base, nil)
	assert.Equal(t, "pandoc failed on a.docx: exit status 2", err.Error())
	assert.ErrorIs(t, err, base)

	long := strings.Repeat("x", stderrTail+100)
	err = commandError("pandoc", "a.docx", base, []byte(long))
	assert.True(t, strings.HasSuffix(err.Error(), "..."+strings.Repeat("x", stderrTail)))
}
