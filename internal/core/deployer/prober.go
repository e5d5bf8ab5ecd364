package deployer

import (
	"context"
	"fmt"
	"regexp"

	"github.com/melih/lighthouse-jobs/internal/core/naming"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
)

// deletedContainersNum is how many container indices Delete cleans up,
// regardless of how many containers were deployed.
const deletedContainersNum = 2

// Exists reports whether the primary container of a job version exists.
func (d *Deployer) Exists(ctx context.Context, name, version string) (bool, error) {
	resource := naming.ResourceName(name, version)
	return d.containerExists(ctx, naming.ContainerName(resource, 0))
}

// Delete force-removes the containers of a job version. Containers that do
// not exist are skipped.
func (d *Deployer) Delete(ctx context.Context, name, version string) error {
	resource := naming.ResourceName(name, version)
	for index := 0; index < deletedContainersNum; index++ {
		if err := d.removeIfExists(ctx, naming.ContainerName(resource, index)); err != nil {
			return err
		}
	}
	if d.secrets != nil {
		d.secrets.Forget(resource)
	}
	return nil
}

func (d *Deployer) containerExists(ctx context.Context, containerName string) (bool, error) {
	containers, err := d.runtime.ListContainers(ctx, ports.ListOptions{
		All:  true,
		Name: "^/" + regexp.QuoteMeta(containerName) + "$",
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up container %s: %w", containerName, err)
	}
	// The runtime filter is advisory; only an exact name match counts.
	for _, c := range containers {
		if c.Name == containerName {
			return true, nil
		}
	}
	return false, nil
}

func (d *Deployer) removeIfExists(ctx context.Context, containerName string) error {
	exists, err := d.containerExists(ctx, containerName)
	if err != nil || !exists {
		return err
	}
	if err := d.runtime.RemoveContainer(ctx, containerName, true); err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerName, err)
	}
	d.logger.WithField("container", containerName).Debug("container removed")
	return nil
}
