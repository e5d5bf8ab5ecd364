package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/naming"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
	"github.com/melih/lighthouse-jobs/internal/core/registry"
	"github.com/sirupsen/logrus"
)

// ImageConfig locates the images the builder produces.
type ImageConfig struct {
	Registry  string
	Namespace string
}

type JobHandler struct {
	targets *registry.Registry
	builder ports.BuilderService
	images  ImageConfig
	logger  *logrus.Entry
}

func NewJobHandler(targets *registry.Registry, builder ports.BuilderService, images ImageConfig, logger *logrus.Logger) *JobHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &JobHandler{
		targets: targets,
		builder: builder,
		images:  images,
		logger:  logger.WithField("component", "http"),
	}
}

// Register mounts the job API on router.
func (h *JobHandler) Register(router fiber.Router) {
	router.Get("/targets", h.ListTargets)
	router.Post("/builds", h.BuildImage)

	jobs := router.Group("/targets/:target/jobs")
	jobs.Get("/", h.ListJobs)
	jobs.Post("/", h.DeployJob)
	jobs.Get("/:name/:version", h.JobExists)
	jobs.Delete("/:name/:version", h.DeleteJob)
	jobs.Get("/:name/:version/logs", h.JobLogs)
	jobs.Put("/:name/:version/secrets", h.SaveSecrets)
	jobs.Get("/:name/:version/secrets", h.GetSecrets)
}

func (h *JobHandler) ListTargets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"targets": h.targets.Names()})
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	jobs, err := target.Monitor().ListJobs(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(jobs)
}

func (h *JobHandler) DeployJob(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req domain.DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ContainersNum == 0 {
		req.ContainersNum = 1
	}
	if req.Family == "" {
		req.Family = req.Name
	}

	job, err := target.Deploy(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *JobHandler) JobExists(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	exists, err := target.Exists(c.Context(), c.Params("name"), c.Params("version"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := target.Delete(c.Context(), c.Params("name"), c.Params("version")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JobHandler) JobLogs(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	tail := c.QueryInt("tail", 0)

	logs, err := target.LogsStreamer().OpenLogs(c.Context(), c.Params("name"), c.Params("version"), tail)
	if err != nil {
		return h.fail(c, err)
	}
	defer logs.Close()

	// Read it all here; the request context ends when the handler returns.
	body, err := io.ReadAll(logs)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set("Content-Type", "text/plain")
	return c.Send(body)
}

func (h *JobHandler) SaveSecrets(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	var secrets domain.JobSecrets
	if err := c.BodyParser(&secrets); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := target.SaveSecrets(c.Context(), c.Params("name"), c.Params("version"), secrets); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *JobHandler) GetSecrets(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	secrets, err := target.GetSecrets(c.Context(), c.Params("name"), c.Params("version"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(secrets)
}

type BuildImageRequest struct {
	RepoURL string `json:"repo_url"`
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Index   int    `json:"index"`
}

// BuildImage builds the image of one job container from source.
// Note: This is a blocking operation and might take time!
func (h *JobHandler) BuildImage(c *fiber.Ctx) error {
	var req BuildImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.RepoURL == "" || req.Name == "" || req.Tag == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "repo_url, name and tag are required",
		})
	}

	imageName := naming.ImageReference(h.images.Registry, h.images.Namespace, req.Name, req.Tag, req.Index)
	image, err := h.builder.BuildImage(c.Context(), req.RepoURL, imageName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

func (h *JobHandler) target(c *fiber.Ctx) (ports.InfrastructureTarget, error) {
	return h.targets.Get(c.Params("target"))
}

// fail maps domain errors to HTTP statuses.
func (h *JobHandler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrEnvConflict):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnsupported):
		return fiber.StatusNotImplemented
	default:
		return fiber.StatusInternalServerError
	}
}
