// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{
			name:  "strips width attribute",
			input: `![](images/media/image1.png){width="6.5in" height="3.2in"}`,
			want:  `![](images/media/image1.png)`,
			count: 1,
		},
		{
			name:  "keeps alt text",
			input: "See ![Figure 1](a.png){.class} below.",
			want:  "See ![Figure 1](a.png) below.",
			count: 1,
		},
		{
			name:  "multiple images on one line",
			input: "![a](1.png){x}![b](2.png){y}",
			want:  "![a](1.png)![b](2.png)",
			count: 2,
		},
		{
			name:  "attribute block spanning lines",
			input: "![](img.png){width=\"1in\"\nheight=\"2in\"}\nnext",
			want:  "![](img.png)\nnext",
			count: 1,
		},
		{
			name:  "empty attribute block",
			input: "![](img.png){}",
			want:  "![](img.png)",
			count: 1,
		},
		{
			name:  "image without attributes untouched",
			input: "![alt](img.png) and text",
			want:  "![alt](img.png) and text",
		},
		{
			name:  "space before block is not a match",
			input: "![alt](img.png) {width=1in}",
			want:  "![alt](img.png) {width=1in}",
		},
		{
			name:  "plain link with attributes untouched",
			input: "[link](https://example.com){target=_blank}",
			want:  "[link](https://example.com){target=_blank}",
		},
		{
			name:  "attribute block alone untouched",
			input: "text {width=1in} more",
			want:  "text {width=1in} more",
		},
		{
			name:  "no trailing newline added",
			input: "![](a.png){w}",
			want:  "![](a.png)",
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\n\n![](images/media/image1.png){width=\"2in\"}\n\nBody ![x](y.png){.c}\n",
		"nothing to do here",
		"![a](b){c}",
	}
	for _, in := range inputs {
		once, _ := Normalize(in)
		twice, n := Normalize(once)
		assert.Equal(t, once, twice)
		assert.Zero(t, n, "second pass should make no replacements for %q", in)
	}
}

func TestNormalizeOnlyFirstBlockRemoved(t *testing.T) {
	// Stacked blocks are outside what pandoc emits; one pass removes only the
	// block adjacent to the reference.
	got, n := Normalize("![x](y.png){.c}{.d}")
	assert.Equal(t, "![x](y.png){.d}", got)
	assert.Equal(t, 1, n)
}

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFixFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		backup    bool
		want      string
		wantCount int
	}{
		{
			name:      "rewrites and backs up",
			content:   "![](a.png){width=1in}\n",
			backup:    true,
			want:      "![](a.png)\n",
			wantCount: 1,
		},
		{
			name:      "rewrites without backup",
			content:   "![](a.png){width=1in}",
			want:      "![](a.png)",
			wantCount: 1,
		},
		{
			name:    "unchanged content still backed up",
			content: "# Plain\n",
			backup:  true,
			want:    "# Plain\n",
		},
		{
			name:    "unchanged content without backup",
			content: "# Plain\n",
			want:    "# Plain\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMarkdown(t, tt.content)

			res, err := FixFile(path, Options{Backup: tt.backup})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, res.Replacements)
			assert.Equal(t, tt.wantCount > 0, res.Changed())

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			bak := path + BackupSuffix
			if tt.backup {
				assert.Equal(t, bak, res.BackupPath)
				data, err := os.ReadFile(bak)
				require.NoError(t, err)
				assert.Equal(t, tt.content, string(data), "backup must hold the pre-edit content")
			} else {
				assert.Empty(t, res.BackupPath)
				assert.NoFileExists(t, bak)
			}
		})
	}
}

func TestFixFileOverwritesPreviousBackup(t *testing.T) {
	path := writeMarkdown(t, "![](a.png){w}")
	require.NoError(t, os.WriteFile(path+BackupSuffix, []byte("stale"), 0o644))

	_, err := FixFile(path, Options{Backup: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "![](a.png){w}", string(data))
}

func TestFixFilePreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	path := writeMarkdown(t, "![](a.png){w}")
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := FixFile(path, Options{})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFixFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.md")

	_, err := FixFile(missing, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")

	_, err = FixFile(missing, Options{Backup: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backing up")
	assert.NoFileExists(t, missing+BackupSuffix)
}

func TestFixFileBackupFailureLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("![](a.png){w}"), 0o644))
	// A directory at the backup path makes the copy fail.
	require.NoError(t, os.Mkdir(path+BackupSuffix, 0o755))

	_, err := FixFile(path, Options{Backup: true})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "![](a.png){w}", string(data))
}
