package ports

import (
	"context"
	"io"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

// InfrastructureTarget is a backend that jobs can be deployed to.
// Targets are registered explicitly with a registry owned by the host.
type InfrastructureTarget interface {
	Name() string
	Deploy(ctx context.Context, req domain.DeployRequest) (*domain.JobDescriptor, error)
	Delete(ctx context.Context, name, version string) error
	Exists(ctx context.Context, name, version string) (bool, error)
	SaveSecrets(ctx context.Context, name, version string, secrets domain.JobSecrets) error
	GetSecrets(ctx context.Context, name, version string) (*domain.JobSecrets, error)
	Monitor() JobMonitor
	LogsStreamer() LogsStreamer
}

// JobMonitor reports jobs currently known to a target.
type JobMonitor interface {
	ListJobs(ctx context.Context) ([]domain.JobDescriptor, error)
	Lookup(ctx context.Context, name, version string) (*domain.JobDescriptor, error)
}

// LogsStreamer opens the output of a deployed job.
type LogsStreamer interface {
	OpenLogs(ctx context.Context, name, version string, tail int) (io.ReadCloser, error)
}

// EnvVarsPlugin contributes extra runtime environment variables to every job.
type EnvVarsPlugin interface {
	JobRuntimeEnvVars() map[string]string
}

// AuthTokenProvider resolves the token a job of the given family uses to
// call back into the platform.
type AuthTokenProvider interface {
	TokenForFamily(ctx context.Context, family string) (string, error)
}
