// Package deployer runs jobs as containers on a single local Docker daemon.
//
// Every operation is a sequence of blocking calls to the runtime. Nothing is
// serialized here: two deploys running at the same time may be handed the
// same port, and concurrent deploys of the same job version can interleave
// their delete and create steps. Callers own that coordination.
package deployer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/envvars"
	"github.com/melih/lighthouse-jobs/internal/core/naming"
	"github.com/melih/lighthouse-jobs/internal/core/plugins"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
	"github.com/melih/lighthouse-jobs/internal/core/secrets"
	"github.com/sirupsen/logrus"
)

const (
	// TargetName is the infrastructure target name of this backend.
	TargetName = "docker"

	// InternalPort is the port every job listens on inside its container.
	InternalPort = 7000

	// HostGatewayAlias lets jobs reach services on the Docker host.
	HostGatewayAlias = "host.docker.internal:host-gateway"

	LabelJobName    = "job-name"
	LabelJobVersion = "job-version"
)

// Config holds the settings the deployer needs from the host.
type Config struct {
	// Network is the Docker network every job container joins.
	Network string
	// Registry and RegistryNamespace locate job images.
	Registry          string
	RegistryNamespace string
	// InternalPubURL is the endpoint jobs use to reach the platform.
	InternalPubURL string
	// TracingHeader is the name of the request tracing header.
	TracingHeader     string
	TelemetryEnabled  bool
	TelemetryEndpoint string
	// LocalMode makes job addresses point at published host ports
	// instead of the internal Docker network.
	LocalMode bool
}

// Deployer manages job deployments on local Docker.
type Deployer struct {
	runtime ports.ContainerService
	cfg     Config
	tokens  ports.AuthTokenProvider
	plugins *plugins.Engine
	secrets *secrets.Store
	logger  *logrus.Entry
	now     func() time.Time
}

// New creates a deployer. tokens, engine and store may be nil.
func New(runtime ports.ContainerService, cfg Config, tokens ports.AuthTokenProvider,
	engine *plugins.Engine, store *secrets.Store, logger *logrus.Logger) *Deployer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Deployer{
		runtime: runtime,
		cfg:     cfg,
		tokens:  tokens,
		plugins: engine,
		secrets: store,
		logger:  logger.WithField("target", TargetName),
		now:     time.Now,
	}
}

// Name implements ports.InfrastructureTarget.
func (d *Deployer) Name() string {
	return TargetName
}

// Monitor implements ports.InfrastructureTarget.
func (d *Deployer) Monitor() ports.JobMonitor {
	return &Monitor{d: d}
}

// LogsStreamer implements ports.InfrastructureTarget.
func (d *Deployer) LogsStreamer() ports.LogsStreamer {
	return &LogsStreamer{d: d}
}

// Deploy runs a job version, replacing any previous deployment of it.
//
// Environment conflicts are reported before any container is touched. A
// failure while launching container k leaves containers 0..k-1 running;
// they are cleaned up by the next Deploy or an explicit Delete.
func (d *Deployer) Deploy(ctx context.Context, req domain.DeployRequest) (*domain.JobDescriptor, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	log := d.logger.WithFields(logrus.Fields{"job": req.Name, "version": req.Version})
	resource := naming.ResourceName(req.Name, req.Version)

	exists, err := d.Exists(ctx, req.Name, req.Version)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Info("replacing existing deployment")
		if err := d.Delete(ctx, req.Name, req.Version); err != nil {
			return nil, fmt.Errorf("failed to delete previous deployment: %w", err)
		}
	}

	port, err := d.allocatePort(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := d.now().Unix()
	reserved, err := d.reservedEnv(ctx, req, resource, timestamp)
	if err != nil {
		return nil, err
	}

	env, err := envvars.Compose(req.RuntimeEnv, reserved, d.plugins.RuntimeEnvVars()...)
	if err != nil {
		return nil, err
	}
	envList := envvars.ToList(env)

	for index := 0; index < req.ContainersNum; index++ {
		spec := ports.RunSpec{
			Name:       naming.ContainerName(resource, index),
			Image:      naming.ImageReference(d.cfg.Registry, d.cfg.RegistryNamespace, req.Name, req.ImageTag, index),
			Env:        envList,
			Network:    d.cfg.Network,
			ExtraHosts: []string{HostGatewayAlias},
			AlwaysPull: true,
			Labels: map[string]string{
				LabelJobName:    req.Name,
				LabelJobVersion: req.Version,
			},
		}
		if index == 0 {
			spec.HostPort = port
			spec.ContainerPort = InternalPort
		}

		if _, err := d.runtime.RunContainer(ctx, spec); err != nil {
			return nil, fmt.Errorf("failed to run container %s: %w", spec.Name, err)
		}
		log.WithFields(logrus.Fields{"container": spec.Name, "image": spec.Image}).Debug("container started")
	}

	log.WithFields(logrus.Fields{"port": port, "containers": req.ContainersNum}).Info("job deployed")

	return &domain.JobDescriptor{
		Name:                 req.Name,
		Version:              req.Version,
		Status:               domain.JobStatusRunning,
		CreateTime:           timestamp,
		UpdateTime:           timestamp,
		InternalName:         d.internalName(resource, port),
		ImageTag:             req.ImageTag,
		InfrastructureTarget: TargetName,
		Port:                 port,
	}, nil
}

// SaveSecrets is not supported on local Docker.
func (d *Deployer) SaveSecrets(_ context.Context, name, version string, _ domain.JobSecrets) error {
	return fmt.Errorf("save secrets of %s %s: managing secrets is not supported on local docker: %w",
		name, version, domain.ErrUnsupported)
}

// GetSecrets is not supported on local Docker.
func (d *Deployer) GetSecrets(_ context.Context, name, version string) (*domain.JobSecrets, error) {
	return nil, fmt.Errorf("get secrets of %s %s: managing secrets is not supported on local docker: %w",
		name, version, domain.ErrUnsupported)
}

func (d *Deployer) reservedEnv(ctx context.Context, req domain.DeployRequest, resource string, timestamp int64) (map[string]string, error) {
	token := ""
	if d.tokens != nil {
		var err error
		token, err = d.tokens.TokenForFamily(ctx, req.Family)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve auth token for family %q: %w", req.Family, err)
		}
	}

	reserved := map[string]string{
		envvars.PubURL:               d.cfg.InternalPubURL,
		envvars.JobName:              req.Name,
		envvars.AuthToken:            token,
		envvars.DeploymentTimestamp:  strconv.FormatInt(timestamp, 10),
		envvars.RequestTracingHeader: d.cfg.TracingHeader,
	}
	if d.cfg.TelemetryEnabled {
		reserved[envvars.OpenTelemetryEndpoint] = d.cfg.TelemetryEndpoint
	}
	if req.ContainersNum > 1 {
		reserved[envvars.UserModuleHostname] = naming.ContainerName(resource, 1)
	}
	return reserved, nil
}

// internalName is the address other platform components use to reach a job.
func (d *Deployer) internalName(resource string, port int) string {
	if d.cfg.LocalMode {
		return fmt.Sprintf("localhost:%d", port)
	}
	return fmt.Sprintf("%s:%d", resource, InternalPort)
}

func validateRequest(req domain.DeployRequest) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("job name is required: %w", domain.ErrInvalidArgument)
	case req.Version == "":
		return fmt.Errorf("job version is required: %w", domain.ErrInvalidArgument)
	case req.ImageTag == "":
		return fmt.Errorf("image tag is required: %w", domain.ErrInvalidArgument)
	case req.ContainersNum < 1:
		return fmt.Errorf("containers number must be at least 1, got %d: %w", req.ContainersNum, domain.ErrInvalidArgument)
	}
	return nil
}
