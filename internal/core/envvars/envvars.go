// Package envvars composes the runtime environment of job containers.
package envvars

import (
	"fmt"
	"sort"
	"strings"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

// Reserved variable names set by the platform for every job.
const (
	PubURL                = "PUB_URL"
	JobName               = "JOB_NAME"
	AuthToken             = "AUTH_TOKEN"
	DeploymentTimestamp   = "JOB_DEPLOYMENT_TIMESTAMP"
	RequestTracingHeader  = "REQUEST_TRACING_HEADER"
	OpenTelemetryEndpoint = "OPENTELEMETRY_ENDPOINT"
	UserModuleHostname    = "JOB_USER_MODULE_HOSTNAME"
)

// ConflictError lists user variables that collide with reserved names.
type ConflictError struct {
	Keys []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("found illegal runtime env vars, which conflict with reserved names: %s",
		strings.Join(e.Keys, ", "))
}

func (e *ConflictError) Unwrap() error {
	return domain.ErrEnvConflict
}

// Conflicts returns the sorted keys present in both maps.
func Conflicts(user, reserved map[string]string) []string {
	var keys []string
	for k := range user {
		if _, ok := reserved[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Compose merges user variables with reserved and plugin variables.
//
// The user set is checked against reserved names before anything is merged.
// Reserved values are laid over user values, then every plugin map is laid
// over the result in order, so plugins may override earlier plugins and
// reserved values. None of the inputs are modified.
func Compose(user, reserved map[string]string, plugins ...map[string]string) (map[string]string, error) {
	if conflicts := Conflicts(user, reserved); len(conflicts) > 0 {
		return nil, &ConflictError{Keys: conflicts}
	}

	merged := make(map[string]string, len(user)+len(reserved))
	for k, v := range user {
		merged[k] = v
	}
	for k, v := range reserved {
		merged[k] = v
	}
	for _, vars := range plugins {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged, nil
}

// ToList renders vars as KEY=value entries sorted by key.
func ToList(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+vars[k])
	}
	return list
}
