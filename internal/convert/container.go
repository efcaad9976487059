// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rtreit/document-converter/internal/container"
)

// containerWorkdir is where the job directory is mounted inside the image.
const containerWorkdir = "/data"

// ContainerConverter converts documents by running a pandoc image through
// a container.Runtime (docker or podman) injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	user    string
}

// NewContainerConverter creates a converter that runs image with rt. Output
// files are written as the current user where the platform exposes uid/gid.
func NewContainerConverter(rt container.Runtime, image string) *ContainerConverter {
	user := ""
	if uid, gid := os.Getuid(), os.Getgid(); uid >= 0 && gid >= 0 {
		user = fmt.Sprintf("%d:%d", uid, gid)
	}
	return &ContainerConverter{runtime: rt, image: image, user: user}
}

// Name returns the runtime and image, e.g. "docker pandoc/core:latest".
func (c *ContainerConverter) Name() string {
	return c.runtime.Name() + " " + c.image
}

// Version verifies the image exists locally and returns the first line of
// its --version output.
func (c *ContainerConverter) Version(ctx context.Context) (string, error) {
	if err := c.runtime.ImageExists(ctx, c.image); err != nil {
		return "", fmt.Errorf("pandoc image not available in %s: %w", c.runtime.Name(), err)
	}
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, container.RunOptions{
		Args:   []string{"--version"},
		Stdout: &out,
	}); err != nil {
		return "", err
	}
	return firstLine(out.Bytes()), nil
}

// Convert mounts job.Dir at /data and runs pandoc there with the same
// relative arguments the local backend uses.
func (c *ContainerConverter) Convert(ctx context.Context, job Job) error {
	dir, err := filepath.Abs(job.Dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", job.Dir, err)
	}

	var stderr bytes.Buffer
	err = c.runtime.Run(ctx, c.image, container.RunOptions{
		Mounts:  []container.Mount{{Source: dir, Target: containerWorkdir}},
		Workdir: containerWorkdir,
		User:    c.user,
		Args:    pandocArgs(toSlash(job)),
		Stderr:  &stderr,
	})
	if err != nil {
		return commandError(c.runtime.Name(), job.Source, err, stderr.Bytes())
	}
	return nil
}

// toSlash rewrites job paths for the Linux container filesystem.
func toSlash(job Job) Job {
	job.Source = filepath.ToSlash(job.Source)
	job.Output = filepath.ToSlash(job.Output)
	job.MediaDir = filepath.ToSlash(job.MediaDir)
	return job
}
