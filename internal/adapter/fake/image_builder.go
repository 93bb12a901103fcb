package fake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"slipway/internal/launch"
	"slipway/internal/recipe"
)

var _ launch.ImageBuilder = (*ImageBuilder)(nil)

// BuiltImage records one successful fake build.
type BuiltImage struct {
	Recipe recipe.Recipe
	Dir    string
	Tag    string
}

// ImageBuilder is an in-memory implementation of launch.ImageBuilder.
type ImageBuilder struct {
	CallRecorder
	mu    sync.Mutex
	built []BuiltImage

	// ProgressLines are replayed through the progress callback before
	// the build resolves, simulating builder output.
	ProgressLines []string

	BuildErr func(ctx context.Context, rcp recipe.Recipe, contextDir, tag string) error
}

func NewImageBuilder() *ImageBuilder {
	return &ImageBuilder{}
}

func (b *ImageBuilder) Build(ctx context.Context, rcp recipe.Recipe, contextDir, tag string, progress func(line string)) (launch.ImageRef, error) {
	b.record("Build", contextDir, tag)
	if progress != nil {
		for _, line := range b.ProgressLines {
			progress(line)
		}
	}
	if b.BuildErr != nil {
		if err := b.BuildErr(ctx, rcp, contextDir, tag); err != nil {
			return launch.ImageRef{}, err
		}
	}

	b.mu.Lock()
	b.built = append(b.built, BuiltImage{Recipe: rcp, Dir: contextDir, Tag: tag})
	b.mu.Unlock()

	sum := sha256.Sum256([]byte(tag))
	return launch.ImageRef{Tag: tag, ID: "sha256:" + hex.EncodeToString(sum[:8])}, nil
}

// Built returns the successful builds in order.
func (b *ImageBuilder) Built() []BuiltImage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BuiltImage, len(b.built))
	copy(out, b.built)
	return out
}
