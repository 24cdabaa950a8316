// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package testinfra

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// SkipDockerEnvVar forces integration tests to skip even when Docker works.
const SkipDockerEnvVar = "MARQUEE_SKIP_CONTAINERS"

var (
	dockerOnce      sync.Once
	dockerAvailable bool
)

// SkipIfNoDocker skips t when no Docker daemon answers or SkipDockerEnvVar is set.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if os.Getenv(SkipDockerEnvVar) != "" {
		t.Skipf("Skipping container test: %s is set", SkipDockerEnvVar)
	}
	dockerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dockerAvailable = exec.CommandContext(ctx, "docker", "info").Run() == nil
	})
	if !dockerAvailable {
		t.Skip("Skipping container test: Docker not available")
	}
}

// CleanupContainer terminates c, logging rather than failing on error so a
// stuck container never hides the real test result.
func CleanupContainer(t *testing.T, ctx context.Context, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}
	if err := c.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate container %s: %v", c.GetContainerID(), err)
	}
}
