package docker

import (
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContainerConfig_Primary(t *testing.T) {
	spec := ports.RunSpec{
		Name:          "job-demo-v-1",
		Image:         "localhost:5000/lighthouse/job-entrypoint:demo-abc",
		Env:           []string{"A=1", "PUB_URL=http://pub"},
		Labels:        map[string]string{"job-name": "demo", "job-version": "1"},
		Network:       "lighthouse_default",
		ExtraHosts:    []string{"host.docker.internal:host-gateway"},
		HostPort:      7010,
		ContainerPort: 7000,
	}

	config, hostConfig, networkConfig := buildContainerConfig(spec)

	assert.Equal(t, spec.Image, config.Image)
	assert.Equal(t, spec.Env, config.Env)
	assert.Equal(t, spec.Labels, config.Labels)
	assert.Contains(t, config.ExposedPorts, nat.Port("7000/tcp"))

	require.Contains(t, hostConfig.PortBindings, nat.Port("7000/tcp"))
	assert.Equal(t, "7010", hostConfig.PortBindings[nat.Port("7000/tcp")][0].HostPort)
	assert.Equal(t, spec.ExtraHosts, hostConfig.ExtraHosts)
	assert.Equal(t, container.NetworkMode("lighthouse_default"), hostConfig.NetworkMode)

	require.NotNil(t, networkConfig)
	assert.Contains(t, networkConfig.EndpointsConfig, "lighthouse_default")
}

func TestBuildContainerConfig_AuxiliaryHasNoPorts(t *testing.T) {
	config, hostConfig, networkConfig := buildContainerConfig(ports.RunSpec{
		Name:  "job-demo-v-1-1",
		Image: "job-user-module-1:demo-abc",
	})

	assert.Empty(t, config.ExposedPorts)
	assert.Empty(t, hostConfig.PortBindings)
	assert.Nil(t, networkConfig)
}

func TestToDomainContainer(t *testing.T) {
	c := container.Summary{
		ID:      "0123456789abcdef0123",
		Names:   []string{"/job-demo-v-1"},
		Image:   "job-entrypoint:demo-abc",
		Status:  "Up 2 minutes",
		State:   "running",
		Created: 1700000000,
		Labels:  map[string]string{"job-name": "demo"},
		Ports: []container.Port{
			{IP: "0.0.0.0", PrivatePort: 7000, PublicPort: 7010, Type: "tcp"},
			{PrivatePort: 9000, Type: "tcp"},
		},
	}

	result := toDomainContainer(c)

	assert.Equal(t, "0123456789ab", result.ID)
	assert.Equal(t, "job-demo-v-1", result.Name)
	assert.True(t, result.Running())
	assert.Equal(t, int64(1700000000), result.CreatedAt.Unix())
	assert.Equal(t, 7010, result.PublishedPort())
	assert.Equal(t, []domain.PortMapping{
		{HostIP: "0.0.0.0", HostPort: 7010, ContainerPort: 7000, Protocol: "tcp"},
		{ContainerPort: 9000, Protocol: "tcp"},
	}, result.Ports)
}

func TestError_Wrapping(t *testing.T) {
	err := newError("RemoveContainer", "job-demo-v-1", ErrContainerNotFound)

	assert.Equal(t, "RemoveContainer job-demo-v-1: container not found", err.Error())
	assert.True(t, errors.Is(err, ErrContainerNotFound))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var dockerErr *Error
	require.True(t, errors.As(error(err), &dockerErr))
	assert.Equal(t, "RemoveContainer", dockerErr.Op)
}

func TestError_WithoutName(t *testing.T) {
	err := newError("Ping", "", ErrConnectionFailed)
	assert.Equal(t, "Ping: docker connection failed", err.Error())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
}
