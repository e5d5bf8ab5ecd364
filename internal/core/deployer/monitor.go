package deployer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/naming"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
)

// Monitor reports jobs running on local Docker.
type Monitor struct {
	d *Deployer
}

// ListJobs returns a descriptor for every job whose primary container exists.
func (m *Monitor) ListJobs(ctx context.Context) ([]domain.JobDescriptor, error) {
	containers, err := m.d.runtime.ListContainers(ctx, ports.ListOptions{
		All:  true,
		Name: "^/" + naming.ResourcePrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list job containers: %w", err)
	}

	jobs := []domain.JobDescriptor{}
	for _, c := range containers {
		if job, ok := m.describe(c); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Lookup returns the descriptor of a deployed job version.
func (m *Monitor) Lookup(ctx context.Context, name, version string) (*domain.JobDescriptor, error) {
	primary := naming.ContainerName(naming.ResourceName(name, version), 0)
	containers, err := m.d.runtime.ListContainers(ctx, ports.ListOptions{
		All:  true,
		Name: "^/" + regexp.QuoteMeta(primary) + "$",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up container %s: %w", primary, err)
	}

	for _, c := range containers {
		if c.Name != primary {
			continue
		}
		if job, ok := m.describe(c); ok {
			return &job, nil
		}
	}
	return nil, fmt.Errorf("job %s %s: %w", name, version, domain.ErrNotFound)
}

// describe turns a primary job container into a descriptor. Auxiliary and
// foreign containers are rejected.
func (m *Monitor) describe(c domain.Container) (domain.JobDescriptor, bool) {
	name, version := c.Labels[LabelJobName], c.Labels[LabelJobVersion]
	if name == "" || version == "" {
		return domain.JobDescriptor{}, false
	}
	resource := naming.ResourceName(name, version)
	if c.Name != naming.ContainerName(resource, 0) {
		return domain.JobDescriptor{}, false
	}

	status := domain.JobStatusRunning
	if !c.Running() {
		status = domain.JobStatusError
	}
	port := c.PublishedPort()
	created := c.CreatedAt.Unix()

	return domain.JobDescriptor{
		Name:                 name,
		Version:              version,
		Status:               status,
		CreateTime:           created,
		UpdateTime:           created,
		InternalName:         m.d.internalName(resource, port),
		ImageTag:             imageTag(c.Image, name),
		InfrastructureTarget: TargetName,
		Port:                 port,
	}, true
}

// imageTag recovers the deployed tag from an image reference of the form
// repo:{name}-{tag}.
func imageTag(image, name string) string {
	i := strings.LastIndex(image, ":")
	if i < 0 || strings.Contains(image[i:], "/") {
		return ""
	}
	return strings.TrimPrefix(image[i+1:], name+"-")
}
