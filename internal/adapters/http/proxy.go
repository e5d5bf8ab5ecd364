package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/melih/lighthouse-jobs/internal/core/domain"
	"github.com/melih/lighthouse-jobs/internal/core/ports"
)

// ProxyHandler forwards /pub/job/:name/:version/* requests to deployed jobs.
type ProxyHandler struct {
	monitor ports.JobMonitor
}

// NewProxyHandler creates a new proxy handler.
func NewProxyHandler(monitor ports.JobMonitor) *ProxyHandler {
	return &ProxyHandler{monitor: monitor}
}

// Register mounts the proxy on router.
func (h *ProxyHandler) Register(router fiber.Router) {
	router.All("/pub/job/:name/:version/*", h.ProxyRequest)
}

// ProxyRequest routes a request to the internal address of the job version
// named in the path. The remainder of the path is forwarded as is.
func (h *ProxyHandler) ProxyRequest(c *fiber.Ctx) error {
	name, version := c.Params("name"), c.Params("version")

	job, err := h.monitor.Lookup(c.Context(), name, version)
	if err != nil {
		return c.Status(statusFor(err)).SendString(err.Error())
	}
	if job.Status != domain.JobStatusRunning {
		return c.Status(fiber.StatusServiceUnavailable).SendString(fmt.Sprintf("Job '%s' version '%s' is not running", name, version))
	}

	remote, err := url.Parse("http://" + job.InternalName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Invalid target URL")
	}
	forwardPath := "/" + c.Params("*")

	proxy := httputil.NewSingleHostReverseProxy(remote)

	// Rewrite Host and strip the /pub/job prefix so the job sees its own paths.
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = remote.Host
		req.URL.Path = forwardPath
		req.URL.RawPath = ""
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(fmt.Sprintf("Proxy Info: target=%s error=%v", job.InternalName, err)))
	}

	return adaptor.HTTPHandler(proxy)(c)
}
