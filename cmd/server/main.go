package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/mcules/motor-speed/internal/activity"
	"github.com/mcules/motor-speed/internal/api"
	"github.com/mcules/motor-speed/internal/artifact"
	"github.com/mcules/motor-speed/internal/config"
	"github.com/mcules/motor-speed/internal/control"
	"github.com/mcules/motor-speed/internal/httpx"
	"github.com/mcules/motor-speed/internal/ledger"
	"github.com/mcules/motor-speed/internal/logger"
	"github.com/mcules/motor-speed/internal/metrics"
	"github.com/mcules/motor-speed/internal/predict"
	"github.com/mcules/motor-speed/internal/ui"
)

func main() {
	configFile := flag.String("config", os.Getenv("MOTORSPEED_CONFIG"), "optional config file (yaml, json, toml)")
	flag.Parse()

	v, err := config.New(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	logger.Init(cfg.AppName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger of every artifact load.
	store, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LedgerPath).Msg("failed to open artifact ledger")
	}
	defer store.Close()

	activityLog := activity.New(cfg.ActivitySize)

	// Artifacts are loaded once here; the bundle is read-only while serving.
	loader := artifact.NewLoader(cfg.Artifacts)
	loader.Notify = func(r artifact.Result) {
		activityLog.AddLoad(r)
		store.RecordLoad(r)
	}
	bundle := loader.Bundle()

	pipeline := predict.NewPipeline(bundle, cfg.MemoBytes)
	pipeline.Activity = activityLog
	pipeline.Latency = metrics.NewLatencyTracker(cfg.LatencyAlpha)

	// gRPC server (health + reflection).
	healthReporter := control.NewHealthReporter()
	healthReporter.Update(bundle)

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("grpc listen")
	}
	grpcServer := grpc.NewServer()
	healthReporter.Register(grpcServer)

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC listening")
		if err := grpcServer.Serve(grpcLis); err != nil {
			log.Error().Err(err).Msg("grpc serve")
		}
	}()

	// HTTP server (UI + API on same port).
	mux := http.NewServeMux()

	// Root redirect to UI.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	uiHandler, err := ui.NewHandler(pipeline, loader, activityLog, store)
	if err != nil {
		log.Fatal().Err(err).Msg("ui init")
	}
	uiHandler.OnReload = healthReporter.Update
	uiHandler.Register(mux)

	apiMux := http.NewServeMux()
	api.NewHandler(pipeline).Register(apiMux)
	mux.Handle("/v1/", httpx.CORS{AllowOrigin: cfg.CORSOrigin}.Wrap(apiMux))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info().Msg("shutting down")
		healthReporter.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		grpcServer.GracefulStop()
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Bool("ready", bundle.Ready()).
		Msg("HTTP listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http serve")
	}
	<-stopped
}
