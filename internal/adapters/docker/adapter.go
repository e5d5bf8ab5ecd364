package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli    *client.Client
	logger *logrus.Entry
}

// NewAdapter creates a new Docker adapter instance.
// If host is empty, the daemon address is taken from the environment.
func NewAdapter(host string, logger *logrus.Logger) (*Adapter, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, newError("NewAdapter", "", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	return &Adapter{cli: cli, logger: logger.WithField("component", "docker")}, nil
}

// Ping checks that the Docker daemon is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return newError("Ping", "", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	return nil
}

// Close closes the Docker client connection.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// ListContainers returns containers matching opts with their published ports.
func (a *Adapter) ListContainers(ctx context.Context, opts ports.ListOptions) ([]domain.Container, error) {
	listOpts := container.ListOptions{All: opts.All}
	if opts.Name != "" {
		listOpts.Filters = filters.NewArgs(filters.Arg("name", opts.Name))
	}

	containers, err := a.cli.ContainerList(ctx, listOpts)
	if err != nil {
		return nil, newError("ListContainers", "", err)
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		result = append(result, toDomainContainer(c))
	}
	return result, nil
}

// RunContainer pulls the image if requested, then creates and starts the
// container. A container that fails to start is left in place.
func (a *Adapter) RunContainer(ctx context.Context, spec ports.RunSpec) (string, error) {
	if spec.AlwaysPull {
		if err := a.pullImage(ctx, spec.Image); err != nil {
			return "", err
		}
	}

	config, hostConfig, networkConfig := buildContainerConfig(spec)

	resp, err := a.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		if strings.Contains(err.Error(), "Conflict") {
			return "", newError("CreateContainer", spec.Name, ErrContainerAlreadyExists)
		}
		return "", newError("CreateContainer", spec.Name, err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		if strings.Contains(err.Error(), "port is already allocated") {
			return "", newError("StartContainer", spec.Name, fmt.Errorf("%w: %v", ErrPortAlreadyAllocated, err))
		}
		return "", newError("StartContainer", spec.Name, err)
	}

	a.logger.WithFields(logrus.Fields{"container": spec.Name, "id": shortID(resp.ID)}).Debug("container running")
	return resp.ID, nil
}

// RemoveContainer removes a container by name.
func (a *Adapter) RemoveContainer(ctx context.Context, name string, force bool) error {
	err := a.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: force})
	if err != nil {
		if client.IsErrNotFound(err) {
			return newError("RemoveContainer", name, ErrContainerNotFound)
		}
		return newError("RemoveContainer", name, err)
	}
	return nil
}

// GetContainerLogs returns the demultiplexed stdout and stderr of a container.
// tail <= 0 returns the whole log.
func (a *Adapter) GetContainerLogs(ctx context.Context, name string, tail int) (io.ReadCloser, error) {
	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "all",
	}
	if tail > 0 {
		options.Tail = strconv.Itoa(tail)
	}

	raw, err := a.cli.ContainerLogs(ctx, name, options)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, newError("ContainerLogs", name, ErrContainerNotFound)
		}
		return nil, newError("ContainerLogs", name, err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer raw.Close()
		_, err := stdcopy.StdCopy(pw, pw, raw)
		pw.CloseWithError(err)
	}()
	return pr, nil
}

func (a *Adapter) pullImage(ctx context.Context, ref string) error {
	reader, err := a.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return newError("PullImage", ref, fmt.Errorf("%w: %v", ErrImagePullFailed, err))
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return newError("PullImage", ref, fmt.Errorf("%w: %v", ErrImagePullFailed, err))
	}
	a.logger.WithField("image", ref).Debug("image pulled")
	return nil
}

// buildContainerConfig translates a run spec into Docker API configs.
func buildContainerConfig(spec ports.RunSpec) (*container.Config, *container.HostConfig, *network.NetworkingConfig) {
	config := &container.Config{
		Image:  spec.Image,
		Env:    spec.Env,
		Labels: spec.Labels,
	}
	hostConfig := &container.HostConfig{
		ExtraHosts: spec.ExtraHosts,
	}

	if spec.HostPort != 0 {
		containerPort := nat.Port(fmt.Sprintf("%d/tcp", spec.ContainerPort))
		config.ExposedPorts = nat.PortSet{containerPort: struct{}{}}
		hostConfig.PortBindings = nat.PortMap{
			containerPort: []nat.PortBinding{{HostPort: strconv.Itoa(spec.HostPort)}},
		}
	}

	var networkConfig *network.NetworkingConfig
	if spec.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(spec.Network)
		networkConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {},
			},
		}
	}

	return config, hostConfig, networkConfig
}

func toDomainContainer(c container.Summary) domain.Container {
	// Names carry a leading slash
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	var mappings []domain.PortMapping
	for _, p := range c.Ports {
		mappings = append(mappings, domain.PortMapping{
			HostIP:        p.IP,
			HostPort:      int(p.PublicPort),
			ContainerPort: int(p.PrivatePort),
			Protocol:      p.Type,
		})
	}

	return domain.Container{
		ID:        shortID(c.ID),
		Name:      name,
		Image:     c.Image,
		Status:    c.Status,
		State:     string(c.State),
		CreatedAt: time.Unix(c.Created, 0),
		Labels:    c.Labels,
		Ports:     mappings,
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
