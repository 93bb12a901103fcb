package build

import (
	"archive/tar"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/go-archive"
	"github.com/moby/patternmatcher/ignorefile"
)

// baseExcludes are always kept out of the build context. The env file
// carries credentials; those travel through the instance environment,
// never into the image.
var baseExcludes = []string{
	".env",
	".git",
	"**/__pycache__",
	"**/*.pyc",
}

// Context tars contextDir for the builder with the rendered Dockerfile
// injected under dockerfileName. The file never touches the context
// directory on disk; it exists only inside the tar stream.
func Context(contextDir, dockerfileName, dockerfile string) (io.ReadCloser, error) {
	excludes, err := readDockerignore(contextDir)
	if err != nil {
		return nil, err
	}
	excludes = append(excludes, baseExcludes...)

	ctxTar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("tar build context %s: %w", contextDir, err)
	}

	head, err := dockerfileEntry(dockerfileName, dockerfile)
	if err != nil {
		ctxTar.Close()
		return nil, err
	}
	return &tarStream{Reader: io.MultiReader(head, ctxTar), closer: ctxTar}, nil
}

// dockerfileEntry produces a headless tar fragment holding only the
// Dockerfile. Flush pads the entry without writing the end-of-archive
// marker, so the context tar can follow in the same stream.
func dockerfileEntry(name, content string) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    int64(len(content)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("write dockerfile entry: %w", err)
	}
	if _, err := io.WriteString(tw, content); err != nil {
		return nil, fmt.Errorf("write dockerfile entry: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("write dockerfile entry: %w", err)
	}
	return &buf, nil
}

func readDockerignore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, ".dockerignore"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read .dockerignore: %w", err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("parse .dockerignore: %w", err)
	}
	return patterns, nil
}

// contextDockerfileName picks a name that cannot collide with files in
// the user's context directory.
func contextDockerfileName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return ".slipway.dockerfile"
	}
	return ".slipway.dockerfile." + hex.EncodeToString(b)
}

type tarStream struct {
	io.Reader
	closer io.Closer
}

func (s *tarStream) Close() error {
	return s.closer.Close()
}
