// Package build produces container images from recipes through the
// Docker Engine API. It renders the recipe to a Dockerfile, streams the
// build context as a tar, and maps builder failures back to the logical
// recipe step that caused them.
package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	buildtypes "github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"slipway/internal/launch"
	"slipway/internal/recipe"
)

var _ launch.ImageBuilder = (*Builder)(nil)

// Builder implements launch.ImageBuilder using the Docker Engine API.
type Builder struct {
	cli *client.Client
}

// New creates a Builder with a new Docker client from the environment.
func New() (*Builder, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Builder{cli: cli}, nil
}

// NewFromClient wraps an existing Docker client.
func NewFromClient(cli *client.Client) *Builder {
	return &Builder{cli: cli}
}

func (b *Builder) Close() error {
	return b.cli.Close()
}

// Build renders rcp, tars contextDir, and runs a classic builder build
// tagged as tag. Progress receives one call per builder output line.
func (b *Builder) Build(ctx context.Context, rcp recipe.Recipe, contextDir, tag string, progress func(line string)) (launch.ImageRef, error) {
	log := slog.With("component", "image-build", "tag", tag)

	df, err := recipe.Render(rcp)
	if err != nil {
		return launch.ImageRef{}, fmt.Errorf("render recipe: %w", err)
	}

	dockerfileName := contextDockerfileName()
	bctx, err := Context(contextDir, dockerfileName, df.Content)
	if err != nil {
		return launch.ImageRef{}, err
	}
	defer bctx.Close()

	log.Debug("starting image build", "context", contextDir, "instructions", df.Instructions())
	resp, err := b.cli.ImageBuild(ctx, bctx, buildtypes.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfileName,
		Remove:     true,
		Version:    buildtypes.BuilderV1,
	})
	if err != nil {
		return launch.ImageRef{}, fmt.Errorf("start image build: %w", err)
	}
	defer resp.Body.Close()

	if err := followBuild(ctx, resp.Body, df, progress); err != nil {
		return launch.ImageRef{}, err
	}

	ref := launch.ImageRef{Tag: tag}
	if inspect, err := b.cli.ImageInspect(ctx, tag); err != nil {
		log.Warn("inspect built image failed", "error", err)
	} else {
		ref.ID = inspect.ID
	}
	log.Debug("image build complete", "id", ref.ID)
	return ref, nil
}

// stepLine matches the classic builder's per-instruction banner, e.g.
// "Step 4/11 : RUN pip install -r requirements.txt".
var stepLine = regexp.MustCompile(`^Step (\d+)/\d+ : `)

// followBuild consumes the builder's JSON message stream until it ends.
// It tracks the last instruction banner seen so a failure can be pinned
// to the recipe step whose instruction was executing.
func followBuild(ctx context.Context, r io.Reader, df recipe.Dockerfile, progress func(line string)) error {
	dec := json.NewDecoder(r)
	lastStep := 0
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("decode build output: %w", err)
		}
		if msg.Error != nil {
			be := &launch.BuildError{Detail: msg.Error.Message}
			if step, ok := df.StepAt(lastStep); ok {
				be.Step = step
			}
			return be
		}

		line := strings.TrimRight(msg.Stream, "\n")
		if line == "" && msg.Status != "" {
			// Base image pull progress arrives as status messages.
			line = msg.Status
			if msg.ID != "" {
				line = msg.ID + ": " + line
			}
		}
		if line == "" {
			continue
		}
		if m := stepLine.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				lastStep = n
			}
		}
		if progress != nil {
			progress(line)
		}
	}
}
