package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mcules/motor-speed/internal/artifact"
	"github.com/mcules/motor-speed/internal/artifact/artifacttest"
)

func check(t *testing.T, h *HealthReporter, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthFollowsBundle(t *testing.T) {
	h := NewHealthReporter()

	ready := artifact.NewLoader(artifacttest.Write(t, artifacttest.Complete)).Bundle()
	h.Update(ready)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, h, ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, h, ""))

	broken := artifact.NewLoader(artifacttest.Write(t, artifacttest.Files{Model: artifacttest.ModelJSON})).Bundle()
	h.Update(broken)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ServiceName))

	h.Update(nil)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ""))
}

func TestHealthShutdown(t *testing.T) {
	h := NewHealthReporter()
	h.Update(artifact.NewLoader(artifacttest.Write(t, artifacttest.Complete)).Bundle())
	h.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, h, ServiceName))
}
