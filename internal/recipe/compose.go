package recipe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"
)

// OverlayFilename is looked up in the application directory. The file is
// optional; when present it may adjust the run surface of the instance
// without touching the build recipe.
const OverlayFilename = "compose.yaml"

// Overlay carries the run-surface overrides a compose file may set:
// the published host port, extra instance environment, and the health
// probe schedule. Build fields (base image, packages, command) are
// never overridable from compose.
type Overlay struct {
	// HostPort replaces the configured host port when nonzero.
	HostPort uint16

	// Env is appended to the instance environment, KEY=VALUE, sorted.
	Env []string

	// Probe replaces the in-container probe schedule when non-nil.
	Probe *HealthProbe

	// DisableProbe turns the in-container probe off entirely.
	DisableProbe bool
}

// LoadOverlay reads OverlayFilename from dir and extracts the overrides
// for the named service. A missing file returns (nil, nil). When the
// file names no matching service but declares exactly one, that one is
// used.
func LoadOverlay(ctx context.Context, dir, service string, containerPort uint16) (*Overlay, error) {
	path := filepath.Join(dir, OverlayFilename)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read compose overlay: %w", err)
	}

	details := compose.ConfigDetails{
		ConfigFiles: []compose.ConfigFile{
			{Filename: OverlayFilename, Content: data},
		},
	}
	project, err := loader.LoadWithContext(ctx, details, func(o *loader.Options) {
		o.SetProjectName(service, false)
	})
	if err != nil {
		return nil, fmt.Errorf("parse compose overlay: %w", err)
	}

	svc, err := selectService(project, service)
	if err != nil {
		return nil, err
	}

	out := &Overlay{
		HostPort: publishedPort(svc.Ports, containerPort),
		Env:      overlayEnvironment(svc.Environment),
	}
	if hc := svc.HealthCheck; hc != nil {
		if hc.Disable {
			out.DisableProbe = true
		} else {
			out.Probe = &HealthProbe{
				Interval:    overlayDuration(hc.Interval),
				Timeout:     overlayDuration(hc.Timeout),
				StartPeriod: overlayDuration(hc.StartPeriod),
				Retries:     overlayRetries(hc.Retries),
			}
		}
	}
	return out, nil
}

func selectService(project *compose.Project, name string) (compose.ServiceConfig, error) {
	for _, svc := range project.Services {
		if svc.Name == name {
			return svc, nil
		}
	}
	if len(project.Services) == 1 {
		for _, svc := range project.Services {
			return svc, nil
		}
	}
	return compose.ServiceConfig{}, fmt.Errorf("compose overlay: no service %q among %d services", name, len(project.Services))
}

// publishedPort picks the published value of the first port targeting
// the application port, falling back to the first published port of any
// target.
func publishedPort(ports []compose.ServicePortConfig, containerPort uint16) uint16 {
	fallback := uint16(0)
	for _, p := range ports {
		published := parsePublished(p.Published)
		if published == 0 {
			continue
		}
		if p.Target == uint32(containerPort) {
			return published
		}
		if fallback == 0 {
			fallback = published
		}
	}
	return fallback
}

func parsePublished(published string) uint16 {
	published = strings.TrimSpace(published)
	if published == "" {
		return 0
	}
	n, err := strconv.ParseUint(published, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}

func overlayEnvironment(env compose.MappingWithEquals) []string {
	if len(env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		value := ""
		if p := env[key]; p != nil {
			value = *p
		}
		out = append(out, key+"="+value)
	}
	return out
}

func overlayDuration(d *compose.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

func overlayRetries(retries *uint64) int {
	if retries == nil {
		return 0
	}
	const maxInt = int(^uint(0) >> 1)
	if *retries > uint64(maxInt) {
		return maxInt
	}
	return int(*retries)
}
