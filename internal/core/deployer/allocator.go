package deployer

import (
	"context"
	"fmt"
	"strings"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/naming"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
)

const (
	portRangeStart = 7000
	portRangeEnd   = 8000 // exclusive
	portRangeStep  = 10

	// FallbackPort is returned when every port in the range is taken.
	// Repeated exhaustion hands out the same port again.
	FallbackPort = 8000
)

// allocatePort returns the next host port not published by a running job.
//
// Nothing is reserved: the port only becomes occupied once the primary
// container is running, so a concurrent deploy may pick the same port.
func (d *Deployer) allocatePort(ctx context.Context) (int, error) {
	containers, err := d.runtime.ListContainers(ctx, ports.ListOptions{Name: "^/" + naming.ResourcePrefix})
	if err != nil {
		return 0, fmt.Errorf("failed to list job containers: %w", err)
	}
	return NextFreePort(OccupiedPorts(containers)), nil
}

// OccupiedPorts collects host ports published by job containers.
func OccupiedPorts(containers []domain.Container) map[int]struct{} {
	occupied := make(map[int]struct{})
	for _, c := range containers {
		if !strings.HasPrefix(c.Name, naming.ResourcePrefix) {
			continue
		}
		for _, p := range c.Ports {
			if p.HostPort != 0 {
				occupied[p.HostPort] = struct{}{}
			}
		}
	}
	return occupied
}

// NextFreePort scans the job port range in ascending order and returns the
// first port not in occupied, or FallbackPort if the range is exhausted.
func NextFreePort(occupied map[int]struct{}) int {
	for port := portRangeStart; port < portRangeEnd; port += portRangeStep {
		if _, taken := occupied[port]; !taken {
			return port
		}
	}
	return FallbackPort
}
