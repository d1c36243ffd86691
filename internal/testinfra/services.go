// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is the Redis image used by cache integration tests
	DefaultRedisImage = "redis:7-alpine"

	// DefaultMongoImage is the MongoDB image used by store integration tests
	DefaultMongoImage = "mongo:7"

	// DefaultNATSImage is the NATS image used by event integration tests
	DefaultNATSImage = "nats:2.10-alpine"
)

// ServiceContainer is a running backing service with a connection address.
type ServiceContainer struct {
	testcontainers.Container

	// Endpoint is host:port of the first exposed port
	Endpoint string
}

// ServiceOption configures a service container.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	image        string
	startTimeout time.Duration
}

// WithImage overrides the container image.
func WithImage(image string) ServiceOption {
	return func(c *serviceConfig) {
		c.image = image
	}
}

// WithStartTimeout sets how long to wait for the service to accept connections.
func WithStartTimeout(timeout time.Duration) ServiceOption {
	return func(c *serviceConfig) {
		c.startTimeout = timeout
	}
}

// NewRedisContainer starts a Redis server.
//
//	redis, err := testinfra.NewRedisContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, redis.Container)
//	backend, _ := cache.NewRedis(redis.Endpoint, "", 0)
func NewRedisContainer(ctx context.Context, opts ...ServiceOption) (*ServiceContainer, error) {
	return startService(ctx, "redis", DefaultRedisImage, "6379/tcp", nil,
		wait.ForLog("Ready to accept connections"), opts)
}

// NewMongoContainer starts a standalone MongoDB server. Connect with
// "mongodb://" + Endpoint.
func NewMongoContainer(ctx context.Context, opts ...ServiceOption) (*ServiceContainer, error) {
	return startService(ctx, "mongo", DefaultMongoImage, "27017/tcp", nil,
		wait.ForLog("Waiting for connections"), opts)
}

// NewNATSContainer starts a NATS server with JetStream enabled. Connect with
// "nats://" + Endpoint.
func NewNATSContainer(ctx context.Context, opts ...ServiceOption) (*ServiceContainer, error) {
	return startService(ctx, "nats", DefaultNATSImage, "4222/tcp", []string{"-js"},
		wait.ForLog("Server is ready"), opts)
}

func startService(ctx context.Context, name, image, port string, cmd []string, waitFor wait.Strategy, opts []ServiceOption) (*ServiceContainer, error) {
	cfg := &serviceConfig{
		image:        image,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{port},
		Cmd:          cmd,
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(port),
			waitFor,
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", name, err)
	}

	endpoint, err := container.PortEndpoint(ctx, port, "")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get %s endpoint: %w", name, err)
	}

	return &ServiceContainer{Container: container, Endpoint: endpoint}, nil
}

// Logs returns the container logs for debugging.
func (c *ServiceContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(logs), nil
}
