package deployer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// fakeRuntime is an in-memory ports.ContainerService. It ignores name
// filters, so the deployer's own name matching is what gets tested.
type fakeRuntime struct {
	containers map[string]domain.Container
	runs       []ports.RunSpec
	removed    []string
	failRun    map[string]error
	failList   error
	logs       map[string]string
	nextID     int
}

func newFakeRuntime(containers ...domain.Container) *fakeRuntime {
	f := &fakeRuntime{
		containers: make(map[string]domain.Container),
		failRun:    make(map[string]error),
		logs:       make(map[string]string),
	}
	for _, c := range containers {
		if c.State == "" {
			c.State = "running"
		}
		f.containers[c.Name] = c
	}
	return f
}

func (f *fakeRuntime) ListContainers(_ context.Context, opts ports.ListOptions) ([]domain.Container, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	var out []domain.Container
	for _, c := range f.containers {
		if !opts.All && !c.Running() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRuntime) RunContainer(_ context.Context, spec ports.RunSpec) (string, error) {
	f.runs = append(f.runs, spec)
	if err, ok := f.failRun[spec.Name]; ok {
		return "", err
	}
	if _, ok := f.containers[spec.Name]; ok {
		return "", fmt.Errorf("Conflict. The container name %q is already in use", spec.Name)
	}

	f.nextID++
	c := domain.Container{
		ID:        fmt.Sprintf("c%d", f.nextID),
		Name:      spec.Name,
		Image:     spec.Image,
		State:     "running",
		CreatedAt: time.Unix(1700000000, 0),
		Labels:    spec.Labels,
	}
	if spec.HostPort != 0 {
		c.Ports = []domain.PortMapping{{HostPort: spec.HostPort, ContainerPort: spec.ContainerPort, Protocol: "tcp"}}
	}
	f.containers[spec.Name] = c
	return c.ID, nil
}

func (f *fakeRuntime) RemoveContainer(_ context.Context, name string, _ bool) error {
	if _, ok := f.containers[name]; !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	delete(f.containers, name)
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeRuntime) GetContainerLogs(_ context.Context, name string, _ int) (io.ReadCloser, error) {
	if _, ok := f.containers[name]; !ok {
		return nil, fmt.Errorf("container %s: %w", name, domain.ErrNotFound)
	}
	return io.NopCloser(strings.NewReader(f.logs[name])), nil
}

// names returns the sorted container names with the given prefix.
func (f *fakeRuntime) names(prefix string) []string {
	var out []string
	for name := range f.containers {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type tokenFunc func(ctx context.Context, family string) (string, error)

func (f tokenFunc) TokenForFamily(ctx context.Context, family string) (string, error) {
	return f(ctx, family)
}

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
