package deployer

import (
	"context"
	"fmt"
	"io"

	"github.com/melih/lighthouse-jobs/internal/core/naming"
)

// LogsStreamer reads the output of job containers.
type LogsStreamer struct {
	d *Deployer
}

// OpenLogs returns the recent output of a job's primary container.
// tail <= 0 returns the whole log. The caller must close the reader.
func (l *LogsStreamer) OpenLogs(ctx context.Context, name, version string, tail int) (io.ReadCloser, error) {
	primary := naming.ContainerName(naming.ResourceName(name, version), 0)
	logs, err := l.d.runtime.GetContainerLogs(ctx, primary, tail)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs of %s: %w", primary, err)
	}
	return logs, nil
}
