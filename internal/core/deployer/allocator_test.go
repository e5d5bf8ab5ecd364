package deployer

import (
	"context"
	"errors"
	"testing"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupiedSet(ports ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(ports))
	for _, p := range ports {
		set[p] = struct{}{}
	}
	return set
}

func fullRange() map[int]struct{} {
	set := make(map[int]struct{})
	for p := 7000; p < 8000; p += 10 {
		set[p] = struct{}{}
	}
	return set
}

func TestNextFreePort(t *testing.T) {
	tests := []struct {
		name     string
		occupied map[int]struct{}
		expected int
	}{
		{"empty", occupiedSet(), 7000},
		{"first three taken", occupiedSet(7000, 7010, 7020), 7030},
		{"gap", occupiedSet(7000, 7020), 7010},
		{"off-step ports ignored", occupiedSet(7001, 7005), 7000},
		{"exhausted", fullRange(), 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextFreePort(tt.occupied))
		})
	}
}

func TestNextFreePort_FallbackIsReused(t *testing.T) {
	occupied := fullRange()
	occupied[FallbackPort] = struct{}{}

	assert.Equal(t, FallbackPort, NextFreePort(occupied))
}

func jobContainer(name string, hostPort int) domain.Container {
	c := domain.Container{Name: name, State: "running"}
	if hostPort != 0 {
		c.Ports = []domain.PortMapping{{HostPort: hostPort, ContainerPort: InternalPort, Protocol: "tcp"}}
	}
	return c
}

func TestOccupiedPorts_OnlyJobContainers(t *testing.T) {
	occupied := OccupiedPorts([]domain.Container{
		jobContainer("job-a-v-1", 7000),
		jobContainer("job-a-v-1-1", 0),
		jobContainer("postgres", 7010),
		{Name: "job-b-v-1", Ports: []domain.PortMapping{{ContainerPort: 7000}}},
	})

	assert.Equal(t, occupiedSet(7000), occupied)
}

func TestAllocatePort(t *testing.T) {
	rt := newFakeRuntime(
		jobContainer("job-a-v-1", 7000),
		jobContainer("job-b-v-1", 7010),
		jobContainer("job-c-v-1", 7020),
		jobContainer("registry", 7030),
	)
	d := newTestDeployer(rt, Config{})

	port, err := d.allocatePort(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7030, port)
}

func TestAllocatePort_ListFailure(t *testing.T) {
	rt := newFakeRuntime()
	rt.failList = errors.New("daemon unavailable")
	d := newTestDeployer(rt, Config{})

	_, err := d.allocatePort(context.Background())
	assert.ErrorContains(t, err, "daemon unavailable")
}
