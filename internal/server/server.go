package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/b2breeze/internal/common"
)

// RequestIDHeader is the metadata key carrying the caller's request id.
const RequestIDHeader = "x-request-id"

// Services bundles the implementations registered on one gRPC server.
type Services struct {
	Contacts ContactsServer
	Scan     ScanServer
	Export   ExportServer
}

// New builds a gRPC server with every b2breeze service, the health service
// and reflection registered. The returned health server starts SERVING.
func New(svcs Services, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(LoggingInterceptor(logger))}, opts...)
	s := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)

	if svcs.Contacts != nil {
		RegisterContactsServer(s, svcs.Contacts)
		healthServer.SetServingStatus(ContactsServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	if svcs.Scan != nil {
		RegisterScanServer(s, svcs.Scan)
		healthServer.SetServingStatus(ScanServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	if svcs.Export != nil {
		RegisterExportServer(s, svcs.Export)
		healthServer.SetServingStatus(ExportServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	// empty name is overall server health
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(s)
	return s, healthServer
}

// LoggingInterceptor tags each call with a request id and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)

		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{
			"method", info.FullMethod,
			"request_id", reqID,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warn("grpc.request.failed", append(attrs, "error", err)...)
		} else {
			logger.Debug("grpc.request.ok", attrs...)
		}
		return resp, err
	}
}
