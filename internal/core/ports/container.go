package ports

import (
	"context"
	"io"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

// ListOptions narrows a container listing.
type ListOptions struct {
	// All includes stopped containers.
	All bool
	// Name is a runtime-side name filter (a regular expression for Docker,
	// e.g. "^/job-"). Callers must still match names themselves.
	Name string
}

// RunSpec describes a container to pull, create and start.
type RunSpec struct {
	Name    string
	Image   string
	Env     []string // KEY=value entries
	Labels  map[string]string
	Network string
	// ExtraHosts are "host:address" aliases added to /etc/hosts.
	ExtraHosts []string
	// HostPort publishes ContainerPort on the host when non-zero.
	HostPort      int
	ContainerPort int
	// AlwaysPull pulls the image even if it is present locally.
	AlwaysPull bool
}

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context, opts ListOptions) ([]domain.Container, error)
	RunContainer(ctx context.Context, spec RunSpec) (string, error)
	RemoveContainer(ctx context.Context, name string, force bool) error
	GetContainerLogs(ctx context.Context, name string, tail int) (io.ReadCloser, error)
}
