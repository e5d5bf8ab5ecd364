package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/lighthouse-jobs/internal/adapters/auth"
	"github.com/melih/lighthouse-jobs/internal/adapters/builder"
	"github.com/melih/lighthouse-jobs/internal/adapters/docker"
	"github.com/melih/lighthouse-jobs/internal/adapters/http"
	"github.com/melih/lighthouse-jobs/internal/config"
	"github.com/melih/lighthouse-jobs/internal/core/deployer"
	"github.com/melih/lighthouse-jobs/internal/core/plugins"
	"github.com/melih/lighthouse-jobs/internal/core/registry"
	"github.com/melih/lighthouse-jobs/internal/core/secrets"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logger := config.NewLogger(cfg.Log)

	// 1. Initialize Adapters (Infrastructure)
	dockerAdapter, err := docker.NewAdapter(cfg.Docker.Host, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize Docker adapter")
	}
	defer dockerAdapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := dockerAdapter.Ping(ctx); err != nil {
		logger.WithError(err).Warn("Docker daemon is not reachable yet")
	}
	cancel()

	builderAdapter, err := builder.NewBuilderAdapter(cfg.Docker.Host, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize builder")
	}

	// 2. Core services
	// Config keys come back lowercased; env var names are upper case.
	pluginEnv := make(plugins.Static, len(cfg.Plugins.RuntimeEnv))
	for key, value := range cfg.Plugins.RuntimeEnv {
		pluginEnv[strings.ToUpper(key)] = value
	}

	localDocker := deployer.New(dockerAdapter, deployer.Config{
		Network:           cfg.Docker.Network,
		Registry:          cfg.Registry.Host,
		RegistryNamespace: cfg.Registry.Namespace,
		InternalPubURL:    cfg.Pub.InternalURL,
		TracingHeader:     cfg.Tracing.HeaderName,
		TelemetryEnabled:  cfg.Telemetry.Enabled,
		TelemetryEndpoint: cfg.Telemetry.Endpoint,
		LocalMode:         cfg.Deployment.Local,
	}, auth.NewTokenStore(cfg.Auth.JobTokens), plugins.NewEngine(pluginEnv), secrets.NewStore(), logger)

	targets := registry.New()
	if err := targets.Register(localDocker); err != nil {
		logger.WithError(err).Fatal("Failed to register infrastructure target")
	}

	// 3. HTTP Handlers
	jobHandler := http.NewJobHandler(targets, builderAdapter, http.ImageConfig{
		Registry:  cfg.Registry.Host,
		Namespace: cfg.Registry.Namespace,
	}, logger)
	proxyHandler := http.NewProxyHandler(localDocker.Monitor())

	// 4. Setup Framework (Fiber) and routes
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	api := app.Group("/api")
	v1 := api.Group("/v1")
	jobHandler.Register(v1)
	proxyHandler.Register(app)

	// 5. Start Server
	logger.WithField("addr", cfg.Server.Addr).Info("Server starting")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
