package ports

import "context"

// BuilderService defines operations for building job images from source code.
type BuilderService interface {
	// BuildImage clones a repository and builds a Docker image from it,
	// tagged as imageName. It returns the tag of the built image or an error.
	BuildImage(ctx context.Context, repoURL string, imageName string) (string, error)
}
