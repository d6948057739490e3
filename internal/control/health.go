package control

import (
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mcules/motor-speed/internal/artifact"
)

// ServiceName is the gRPC health service name of the predictor.
const ServiceName = "motorspeed.Predictor"

// HealthReporter publishes predictor readiness over grpc.health.v1.
type HealthReporter struct {
	Server *health.Server
}

func NewHealthReporter() *HealthReporter {
	return &HealthReporter{Server: health.NewServer()}
}

// Register attaches the health service and server reflection to s.
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.Server)
	reflection.Register(s)
}

// Update sets SERVING when the bundle can predict and NOT_SERVING otherwise.
// The overall server status ("") follows the predictor.
func (h *HealthReporter) Update(b *artifact.Bundle) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if b != nil && b.Ready() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.Server.SetServingStatus(ServiceName, st)
	h.Server.SetServingStatus("", st)
	log.Info().Str("service", ServiceName).Str("status", st.String()).Msg("health status updated")
}

// Shutdown marks every service NOT_SERVING.
func (h *HealthReporter) Shutdown() {
	h.Server.Shutdown()
}
