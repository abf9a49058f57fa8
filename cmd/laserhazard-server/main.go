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

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/internal/observability"
	"github.com/signalsfoundry/laserhazard/kb"
)

// Config holds the server settings collected from flags and environment.
type Config struct {
	ListenAddress  string
	MetricsAddress string
	EnableTLS      bool
	TLSCertPath    string
	TLSKeyPath     string
	LogLevel       string
	LogFormat      string
	CatalogPath    string
	// FactorCacheSize bounds the correction-factor memo; 0 picks the default.
	FactorCacheSize int
	// CacheReportInterval is how often the cache size gauge is refreshed.
	CacheReportInterval time.Duration
}

func main() {
	var cfg Config
	flag.StringVar(&cfg.ListenAddress, "grpc-addr", ":50051", "TCP address the hazard gRPC server listens on")
	flag.StringVar(&cfg.MetricsAddress, "metrics-addr", ":9090", "HTTP address for Prometheus /metrics (empty disables)")
	flag.BoolVar(&cfg.EnableTLS, "tls", false, "serve gRPC over TLS")
	flag.StringVar(&cfg.TLSCertPath, "tls-cert", "", "TLS certificate path")
	flag.StringVar(&cfg.TLSKeyPath, "tls-key", "", "TLS private key path")
	flag.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", envOr("LOG_FORMAT", "text"), "log format (text or json)")
	flag.StringVar(&cfg.CatalogPath, "catalog", "configs/lasers.yaml", "path to a YAML laser product catalog")
	flag.IntVar(&cfg.FactorCacheSize, "factor-cache-size", core.DefaultFactorCacheSize, "correction-factor cache entries")
	flag.DurationVar(&cfg.CacheReportInterval, "cache-report-interval", 15*time.Second, "interval for refreshing the cache size metric")
	flag.Parse()

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "laserhazard-server"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.ListenAddress), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(ctx, "hazard server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves the hazard API on lis until ctx is cancelled.
func run(ctx context.Context, cfg Config, log logging.Logger, lis net.Listener) error {
	if log == nil {
		log = logging.Noop()
	}

	tracingCfg, err := observability.TracingConfigFromEnv()
	if err != nil {
		return err
	}
	shutdownTracing, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	hazardMetrics, err := observability.NewHazardCollector(nil)
	if err != nil {
		return err
	}
	engineMetrics, err := observability.NewEngineCollector(nil)
	if err != nil {
		return err
	}
	metricsSrv := serveMetrics(cfg.MetricsAddress, hazardMetrics, log)

	catalog := loadCatalog(ctx, log, cfg.CatalogPath)
	hazardMetrics.SetCatalogSize(catalog.Len())
	unsubscribe := catalog.Subscribe(func(ev kb.Event) {
		hazardMetrics.SetCatalogSize(catalog.Len())
		log.Debug(context.Background(), "catalog changed",
			logging.String("event", ev.Type.String()),
			logging.String("product_id", ev.Product.ID),
		)
	})
	defer unsubscribe()

	cache, err := core.NewFactorCache(cfg.FactorCacheSize)
	if err != nil {
		return err
	}
	engine := core.NewEngine(core.WithFactorSource(cache))

	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			hazardapi.RequestIDUnaryServerInterceptor(log),
			hazardapi.TracingUnaryServerInterceptor(),
			hazardMetrics.UnaryServerInterceptor(),
		),
	}
	if cfg.EnableTLS {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertPath, cfg.TLSKeyPath)
		if err != nil {
			return err
		}
		opts = append(opts, grpc.Creds(creds))
	}
	server := grpc.NewServer(opts...)
	hazardapi.RegisterHazardServiceServer(server, hazardapi.NewHazardService(engine, catalog, log,
		hazardapi.WithMetrics(hazardMetrics),
		hazardapi.WithEngineMetrics(engineMetrics),
	))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go reportCacheSize(runCtx, cache, engineMetrics, cfg.CacheReportInterval)

	serveErr := make(chan error, 1)
	log.Info(ctx, "starting hazard gRPC server", logging.String("addr", lis.Addr().String()), logging.Bool("tls", cfg.EnableTLS))
	go func() {
		serveErr <- server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down hazard server")
		server.GracefulStop()
		err = nil
	case err = <-serveErr:
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return err
}

func serveMetrics(addr string, collector *observability.HazardCollector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// loadCatalog reads the product catalog. A missing or broken file leaves
// the server running with an empty catalog.
func loadCatalog(ctx context.Context, log logging.Logger, path string) *kb.Catalog {
	if path == "" {
		return kb.NewCatalog()
	}
	catalog, err := kb.LoadCatalogFile(path)
	if err != nil {
		log.Warn(ctx, "skipping catalog load", logging.String("path", path), logging.Err(err))
		return kb.NewCatalog()
	}
	log.Info(ctx, "loaded laser catalog", logging.String("path", path), logging.Int("count", catalog.Len()))
	return catalog
}

func reportCacheSize(ctx context.Context, cache *core.FactorCache, metrics *observability.EngineCollector, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		metrics.SetFactorCacheEntries(cache.Len())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
