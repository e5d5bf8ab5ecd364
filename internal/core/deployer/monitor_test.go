package deployer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_ListJobs(t *testing.T) {
	rt := newFakeRuntime()
	d := newTestDeployer(rt, testConfig())
	_, err := d.Deploy(context.Background(), demoRequest(2))
	require.NoError(t, err)

	rt.containers["job-stray"] = domain.Container{Name: "job-stray", State: "running"}
	crashed := jobContainer("job-broken-v-2", 7010)
	crashed.State = "exited"
	crashed.Image = "localhost:5000/lighthouse/job-entrypoint:broken-def"
	crashed.Labels = map[string]string{LabelJobName: "broken", LabelJobVersion: "2"}
	rt.containers[crashed.Name] = crashed

	jobs, err := d.Monitor().ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "broken", jobs[0].Name)
	assert.Equal(t, domain.JobStatusError, jobs[0].Status)
	assert.Equal(t, "def", jobs[0].ImageTag)

	assert.Equal(t, "demo", jobs[1].Name)
	assert.Equal(t, domain.JobStatusRunning, jobs[1].Status)
	assert.Equal(t, 7000, jobs[1].Port)
	assert.Equal(t, "abc123", jobs[1].ImageTag)
	assert.Equal(t, "job-demo-v-1:7000", jobs[1].InternalName)
}

func TestMonitor_ListJobsEmpty(t *testing.T) {
	d := newTestDeployer(newFakeRuntime(), testConfig())

	jobs, err := d.Monitor().ListJobs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestMonitor_Lookup(t *testing.T) {
	cfg := testConfig()
	cfg.LocalMode = true
	rt := newFakeRuntime()
	d := newTestDeployer(rt, cfg)
	_, err := d.Deploy(context.Background(), demoRequest(1))
	require.NoError(t, err)

	job, err := d.Monitor().Lookup(context.Background(), "demo", "1")
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", job.InternalName)
	assert.Equal(t, 7000, job.Port)
}

func TestMonitor_LookupMissing(t *testing.T) {
	rt := newFakeRuntime(jobContainer("job-demo-v-1-1", 0))
	d := newTestDeployer(rt, testConfig())

	_, err := d.Monitor().Lookup(context.Background(), "demo", "1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestImageTag(t *testing.T) {
	assert.Equal(t, "abc", imageTag("localhost:5000/ns/job-entrypoint:demo-abc", "demo"))
	assert.Equal(t, "", imageTag("localhost:5000/ns/job-entrypoint", "demo"))
}

func TestLogsStreamer_OpenLogs(t *testing.T) {
	rt := newFakeRuntime(jobContainer("job-demo-v-1", 7000))
	rt.logs["job-demo-v-1"] = "listening on :7000\n"
	d := newTestDeployer(rt, testConfig())

	logs, err := d.LogsStreamer().OpenLogs(context.Background(), "demo", "1", 100)
	require.NoError(t, err)
	defer logs.Close()

	out, err := io.ReadAll(logs)
	require.NoError(t, err)
	assert.Equal(t, "listening on :7000\n", string(out))
}

func TestLogsStreamer_Missing(t *testing.T) {
	d := newTestDeployer(newFakeRuntime(), testConfig())

	_, err := d.LogsStreamer().OpenLogs(context.Background(), "demo", "1", 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
