// Package naming derives runtime identifiers for jobs.
package naming

import (
	"fmt"
	"strings"
)

// ResourcePrefix starts the name of every container owned by a job.
const ResourcePrefix = "job-"

// ResourceName returns the resource identity of a job version.
// Pattern: job-{name}-v-{version}, lower-cased, dots replaced by dashes.
//
// Example:
//
//	ResourceName("adder", "1.2.0") // returns "job-adder-v-1-2-0"
func ResourceName(name, version string) string {
	resource := fmt.Sprintf("%s%s-v-%s", ResourcePrefix, name, version)
	return strings.ToLower(strings.ReplaceAll(resource, ".", "-"))
}

// ContainerName returns the name of the container at index within a job's
// deployment. Index 0 is the primary container and keeps the resource name.
//
// Example:
//
//	ContainerName("job-adder-v-1", 0) // returns "job-adder-v-1"
//	ContainerName("job-adder-v-1", 1) // returns "job-adder-v-1-1"
func ContainerName(resource string, index int) string {
	if index == 0 {
		return resource
	}
	return fmt.Sprintf("%s-%d", resource, index)
}

// ImageReference returns the image a job container at index runs.
// Pattern: {registry}/{namespace}/job-entrypoint:{name}-{tag} for index 0 and
// {registry}/{namespace}/job-user-module-{index}:{name}-{tag} otherwise.
// Empty registry or namespace segments are left out.
func ImageReference(registry, namespace, name, tag string, index int) string {
	repo := "job-entrypoint"
	if index > 0 {
		repo = fmt.Sprintf("job-user-module-%d", index)
	}

	var parts []string
	for _, p := range []string{registry, namespace, repo} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return fmt.Sprintf("%s:%s-%s", strings.Join(parts, "/"), name, tag)
}
