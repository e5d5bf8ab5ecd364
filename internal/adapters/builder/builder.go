package builder

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// Adapter builds job images from git repositories.
type Adapter struct {
	cli    *client.Client
	logger *logrus.Entry
}

func NewBuilderAdapter(host string, logger *logrus.Logger) (*Adapter, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, logger: logger.WithField("component", "builder")}, nil
}

// BuildImage clones a repo and builds a Docker image tagged as imageName.
func (a *Adapter) BuildImage(ctx context.Context, repoURL string, imageName string) (string, error) {
	log := a.logger.WithFields(logrus.Fields{"repo": repoURL, "image": imageName})

	tmpDir, err := os.MkdirTemp("", "lighthouse-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	log.Info("cloning repository")
	_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone repo: %w", err)
	}

	tar, err := archive.TarWithOptions(tmpDir, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	log.Info("building image")
	resp, err := a.cli.ImageBuild(ctx, tar, build.ImageBuildOptions{
		Tags:       []string{imageName},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The build finishes when the progress stream ends; errors arrive in it.
	if err := readBuildOutput(resp.Body); err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}

	log.Info("image built")
	return imageName, nil
}

type buildMessage struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
}

// readBuildOutput drains a build progress stream and returns the first
// error message reported by the daemon.
func readBuildOutput(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg buildMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Error != "" {
			return errors.New(msg.Error)
		}
	}
	return scanner.Err()
}
