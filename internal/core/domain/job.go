package domain

// JobStatus is the lifecycle status of a deployed job.
type JobStatus string

const (
	JobStatusRunning JobStatus = "running"
	JobStatusError   JobStatus = "error"
)

// DeployRequest describes a job version to run on an infrastructure target.
type DeployRequest struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	ImageTag      string            `json:"image_tag"`
	ContainersNum int               `json:"containers_num"`
	Family        string            `json:"family"`
	RuntimeEnv    map[string]string `json:"runtime_env,omitempty"`
}

// JobDescriptor is the observable state of a deployed job.
// A redeploy produces a new descriptor instead of mutating the old one.
type JobDescriptor struct {
	Name                 string    `json:"name"`
	Version              string    `json:"version"`
	Status               JobStatus `json:"status"`
	CreateTime           int64     `json:"create_time"`
	UpdateTime           int64     `json:"update_time"`
	InternalName         string    `json:"internal_name"`
	ImageTag             string    `json:"image_tag"`
	InfrastructureTarget string    `json:"infrastructure_target"`
	Port                 int       `json:"port,omitempty"`
}

// JobSecrets holds credentials and secret environment of a job.
type JobSecrets struct {
	GitCredentials   map[string]string `json:"git_credentials,omitempty"`
	SecretBuildEnv   map[string]string `json:"secret_build_env,omitempty"`
	SecretRuntimeEnv map[string]string `json:"secret_runtime_env,omitempty"`
}
