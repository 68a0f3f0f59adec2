// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"github.com/seriesml/forecast-service/internal/cache"
	"github.com/seriesml/forecast-service/internal/config"
	"github.com/seriesml/forecast-service/internal/handler"
	"github.com/seriesml/forecast-service/internal/inference"
	"github.com/seriesml/forecast-service/internal/metrics"
	"github.com/seriesml/forecast-service/internal/middleware"
	"github.com/seriesml/forecast-service/internal/pipeline"
)

const serviceName = "forecast-service"

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "HTTP server port (default: 8080)")
	modelPath := flag.String("model", "", "Path to ONNX model file (default: models/model.onnx)")
	redisAddr := flag.String("redis", "", "Redis address for the result cache (default: disabled)")
	metricsPort := flag.Int("metrics", 0, "Prometheus metrics port (default: 9100)")
	configFile := flag.String("config", "", "Path to config file (optional)")
	useMock := flag.Bool("mock", false, "Use mock inference engine (for testing)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)
	defer logger.Sync()

	// Load configuration from file and environment, then apply flag overrides
	cfg, err := loadConfig(*configFile, *port, *modelPath, *redisAddr, *metricsPort, *useMock)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting "+serviceName,
		zap.Int("port", cfg.Port),
		zap.Int("metrics_port", cfg.MetricsPort),
		zap.String("model", cfg.Model),
		zap.String("redis", cfg.Redis),
		zap.Bool("otel", cfg.OTELEnabled),
		zap.Bool("mock", cfg.UseMockInference))

	// Initialize OpenTelemetry tracer
	var tracerShutdown func(context.Context) error
	if cfg.OTELEnabled {
		tracerShutdown, err = initTracer(cfg.OTELEndpoint, logger)
		if err != nil {
			logger.Warn("Failed to initialize tracer", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	model := pipeline.Model{
		InputName:        cfg.InputName,
		OutputName:       cfg.OutputName,
		BatchCount:       cfg.BatchCount,
		HistoryLength:    cfg.HistoryLength,
		PredictionLength: cfg.PredictionLength,
	}

	// Load inference engine
	var engine inference.Engine
	if cfg.UseMockInference {
		logger.Info("Using mock inference engine")
		engine = inference.NewMock(model.BatchCount, model.PredictionLength)
	} else {
		logger.Info("Loading ONNX model", zap.String("path", cfg.Model))
		engine, err = inference.NewONNX(cfg.Model, cfg.InputName, cfg.OutputName, model.OutputShape())
		if err != nil {
			logger.Fatal("Failed to load ONNX model", zap.Error(err))
		}
		logger.Info("ONNX model loaded successfully")
	}
	defer engine.Close()

	// Initialize Redis result cache (optional)
	var cacheClient *cache.Cache
	if cfg.Redis != "" {
		logger.Info("Connecting to Redis", zap.String("addr", cfg.Redis))
		cacheClient, err = cache.New(cfg.Redis, cfg.CacheTTL)
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			defer cacheClient.Close()
			logger.Info("Redis connected successfully")
		}
	}

	pipe := pipeline.New(engine, model, cfg.EncodePolicy())
	h := handler.New(pipe, cacheClient, logger)

	// Forecast API server
	var healthy atomic.Bool
	apiServer := newAPIServer(cfg.Port, h, cfg.OTELEnabled)

	// HTTP server for metrics and health checks
	metricsServer := startMetricsServer(cfg.MetricsPort, &healthy, logger)

	healthy.Store(true)
	metrics.SetHealthy()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

		healthy.Store(false)
		metrics.SetUnhealthy()

		// Give time for load balancers to detect unhealthy status
		time.Sleep(5 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		apiServer.Shutdown(ctx)
		metricsServer.Shutdown(ctx)

		if tracerShutdown != nil {
			tracerShutdown(ctx)
		}
	}()

	logger.Info(serviceName+" is ready to accept requests", zap.Int("port", cfg.Port))

	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server shutdown complete")
}

func newLogger(debug bool) *zap.Logger {
	zapConfig := zap.NewProductionConfig()
	if debug {
		zapConfig = zap.NewDevelopmentConfig()
	}
	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func loadConfig(configFile string, port int, model, redis string, metricsPort int, useMock bool) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadWithConfigFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// Override with flags if provided
	if port > 0 {
		cfg.Port = port
	}
	if model != "" {
		cfg.Model = model
	}
	if redis != "" {
		cfg.Redis = redis
	}
	if metricsPort > 0 {
		cfg.MetricsPort = metricsPort
	}
	if useMock {
		cfg.UseMockInference = true
	}

	return cfg, nil
}

func newAPIServer(port int, h *handler.Handler, otelEnabled bool) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/forecast", h.Forecast)

	var root http.Handler = middleware.RequestID(middleware.Metrics(mux))
	if otelEnabled {
		root = otelhttp.NewHandler(root, serviceName)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func startMetricsServer(port int, healthy *atomic.Bool, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Service Unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness check (same as healthz for now)
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Not Ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Ready"))
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening (metrics, health)", zap.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return server
}

func initTracer(endpoint string, logger *zap.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	if endpoint != "" {
		// For now, use stdout exporter as OTLP requires more setup
		// In production, use: otlptrace.New(ctx, otlptracegrpc.NewClient(...))
		logger.Info("Using stdout trace exporter", zap.String("otlp_endpoint", endpoint))
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create tracer provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
