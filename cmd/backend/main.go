package main

import (
	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/config"
	"atrium/admin-backend/internal/cors"
	"atrium/admin-backend/internal/dashboard"
	"atrium/admin-backend/internal/event"
	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/form/export"
	"atrium/admin-backend/internal/form/response"
	"atrium/admin-backend/internal/member"
	"atrium/admin-backend/internal/news"
	"atrium/admin-backend/internal/trace"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/middleware"
	_ "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.6.1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var AppName = "no-app-name"

var Version = "no-version"

var BuildTime = "no-build-time"

var CommitHash = "no-commit-hash"

var Environment = "no-env"

func main() {
	AppName = os.Getenv("APP_NAME")
	if AppName == "" {
		AppName = "admin-backend"
	}

	if BuildTime == "no-build-time" {
		now := time.Now()
		BuildTime = "not provided (now: " + now.Format(time.RFC3339) + ")"
	}

	Environment = os.Getenv("ENV")
	if Environment == "" {
		Environment = "no-env"
	}

	appMetadata := []zap.Field{
		zap.String("app_name", AppName),
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit_hash", CommitHash),
		zap.String("environment", Environment),
	}

	cfg, cfgLog := config.Load()
	err := cfg.Validate()
	if err != nil {
		if errors.Is(err, config.ErrDatabaseURLRequired) {
			title := "Database URL is required"
			message := "Please set the DATABASE_URL environment variable or provide a config file with the database_url key."
			message = EarlyApplicationFailed(title, message)
			log.Fatal(message)
		} else {
			log.Fatalf("Failed to validate config: %v, exiting...", err)
		}
	}

	logger, err := initLogger(&cfg, appMetadata)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v, exiting...", err)
	}

	cfgLog.FlushToZap(logger)

	if cfg.Debug {
		logger.Warn("Running in debug mode, make sure to disable it in production")
	}

	logger.Info("Starting application...")

	logger.Info("Starting database migration...")

	err = databaseutil.MigrationUp(cfg.MigrationSource, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to run database migration", zap.Error(err))
	}

	dbPool, err := initDatabasePool(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	shutdown, err := initOpenTelemetry(AppName, Version, BuildTime, CommitHash, Environment, cfg.OtelCollectorUrl)
	if err != nil {
		logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}

	validator := internal.NewValidator()
	problemWriter := internal.NewProblemWriter()

	// ============================================
	// Service
	// ============================================

	formService := form.NewService(logger, dbPool)
	responseService := response.NewService(logger, dbPool, formService)
	exportService := export.NewService(logger, formService, responseService)
	memberService := member.NewService(logger, dbPool)
	eventService := event.NewService(logger, dbPool)
	newsService := news.NewService(logger, dbPool)
	dashboardService := dashboard.NewService(logger, memberService, eventService, newsService)

	// ============================================
	// Handler
	// ============================================

	formHandler := form.NewHandler(logger, validator, problemWriter, formService)
	responseHandler := response.NewHandler(logger, validator, problemWriter, responseService, formService)
	exportHandler := export.NewHandler(logger, problemWriter, exportService)
	memberHandler := member.NewHandler(logger, validator, problemWriter, memberService)
	eventHandler := event.NewHandler(logger, validator, problemWriter, eventService)
	newsHandler := news.NewHandler(logger, validator, problemWriter, newsService)
	dashboardHandler := dashboard.NewHandler(logger, problemWriter, dashboardService)

	// ============================================
	// Middleware
	// ============================================

	traceMiddleware := trace.NewMiddleware(logger, cfg.Debug)
	corsMiddleware := cors.NewMiddleware(logger, cfg.AllowOrigins)

	// Basic Middleware (Tracing and Recovery)
	basicMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	basicMiddleware = basicMiddleware.Append(traceMiddleware.TraceMiddleware)

	// HTTP Server
	mux := http.NewServeMux()

	// Health check route
	mux.Handle("GET /api/healthz", basicMiddleware.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}))

	// ============================================
	// Form routes
	// ============================================

	// Form Management
	// ----------------------
	mux.Handle("GET /api/forms", basicMiddleware.HandlerFunc(formHandler.ListHandler))
	mux.Handle("GET /api/forms/{formId}", basicMiddleware.HandlerFunc(formHandler.GetHandler))
	mux.Handle("POST /api/forms", basicMiddleware.HandlerFunc(formHandler.CreateHandler))
	mux.Handle("PUT /api/forms/{formId}", basicMiddleware.HandlerFunc(formHandler.UpdateHandler))
	mux.Handle("DELETE /api/forms/{formId}", basicMiddleware.HandlerFunc(formHandler.DeleteHandler))

	// -- Form Operations
	mux.Handle("POST /api/forms/{formId}/preview", basicMiddleware.HandlerFunc(formHandler.PreviewHandler))
	mux.Handle("GET /api/forms/{formId}/export", basicMiddleware.HandlerFunc(exportHandler.DownloadHandler))
	mux.Handle("GET /api/forms/{formId}/analytics", basicMiddleware.HandlerFunc(responseHandler.AnalyticsHandler))
	mux.Handle("GET /api/forms/{formId}/analytics/{fieldKey}/election", basicMiddleware.HandlerFunc(responseHandler.ElectionHandler))

	// Response Management
	// ----------------------
	mux.Handle("GET /api/forms/{formId}/responses", basicMiddleware.HandlerFunc(responseHandler.ListHandler))
	mux.Handle("GET /api/forms/{formId}/responses/{responseId}", basicMiddleware.HandlerFunc(responseHandler.GetHandler))
	mux.Handle("POST /api/forms/{formId}/responses", basicMiddleware.HandlerFunc(responseHandler.SubmitHandler))
	// --- (Update response is not allowed)
	mux.Handle("DELETE /api/forms/{formId}/responses/{responseId}", basicMiddleware.HandlerFunc(responseHandler.DeleteHandler))

	// ============================================
	// Member routes
	// ============================================

	mux.Handle("GET /api/members", basicMiddleware.HandlerFunc(memberHandler.ListHandler))
	mux.Handle("GET /api/members/{memberId}", basicMiddleware.HandlerFunc(memberHandler.GetHandler))
	mux.Handle("POST /api/members", basicMiddleware.HandlerFunc(memberHandler.CreateHandler))
	mux.Handle("PUT /api/members/{memberId}", basicMiddleware.HandlerFunc(memberHandler.UpdateHandler))
	mux.Handle("DELETE /api/members/{memberId}", basicMiddleware.HandlerFunc(memberHandler.DeleteHandler))

	// ============================================
	// Event routes
	// ============================================

	mux.Handle("GET /api/events", basicMiddleware.HandlerFunc(eventHandler.ListHandler))
	mux.Handle("GET /api/events/{eventId}", basicMiddleware.HandlerFunc(eventHandler.GetHandler))
	mux.Handle("POST /api/events", basicMiddleware.HandlerFunc(eventHandler.CreateHandler))
	mux.Handle("PUT /api/events/{eventId}", basicMiddleware.HandlerFunc(eventHandler.UpdateHandler))
	mux.Handle("DELETE /api/events/{eventId}", basicMiddleware.HandlerFunc(eventHandler.DeleteHandler))

	// ============================================
	// News routes
	// ============================================

	mux.Handle("GET /api/news", basicMiddleware.HandlerFunc(newsHandler.ListHandler))
	mux.Handle("GET /api/news/{newsId}", basicMiddleware.HandlerFunc(newsHandler.GetHandler))
	mux.Handle("POST /api/news", basicMiddleware.HandlerFunc(newsHandler.CreateHandler))
	mux.Handle("PUT /api/news/{newsId}", basicMiddleware.HandlerFunc(newsHandler.UpdateHandler))
	mux.Handle("DELETE /api/news/{newsId}", basicMiddleware.HandlerFunc(newsHandler.DeleteHandler))

	// -- News Operations
	mux.Handle("POST /api/news/{newsId}/send", basicMiddleware.HandlerFunc(newsHandler.MarkSentHandler))

	// ============================================
	// Dashboard routes
	// ============================================

	mux.Handle("GET /api/dashboard/stats", basicMiddleware.HandlerFunc(dashboardHandler.StatsHandler))

	// End of API routes
	// ============================================
	// handle interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CORS and Entry Point
	entrypoint := corsMiddleware.HandlerFunc(mux.ServeHTTP)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: entrypoint,
	}

	go func() {
		logger.Info("Starting listening request", zap.String("host", cfg.Host), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Fail to start server with error", zap.Error(err))
		}
	}()

	// wait for context close
	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := shutdown(otelCtx); err != nil {
		logger.Error("Forced to shutdown OpenTelemetry", zap.Error(err))
	}

	logger.Info("Successfully shutdown")
}

func initLogger(cfg *config.Config, appMetadata []zap.Field) (*zap.Logger, error) {
	var err error
	var logger *zap.Logger
	if cfg.Debug {
		logger, err = logutil.ZapDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		logger.Info("Running in debug mode", appMetadata...)
	} else {
		logger, err = logutil.ZapProductionConfig().Build()
		if err != nil {
			return nil, err
		}

		logger = logger.With(appMetadata...)
	}
	defer func() {
		err := logger.Sync()
		if err != nil {
			zap.S().Errorw("Failed to sync logger", zap.Error(err))
		}
	}()

	return logger, nil
}

func initDatabasePool(databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return dbPool, nil
}

func initOpenTelemetry(appName, version, buildTime, commitHash, environment, otelCollectorUrl string) (func(context.Context) error, error) {
	ctx := context.Background()

	serviceName := semconv.ServiceNameKey.String(appName)
	serviceVersion := semconv.ServiceVersionKey.String(version)
	serviceNamespace := semconv.ServiceNamespaceKey.String("atrium")
	serviceCommitHash := attribute.String("service.commit_hash", commitHash)
	serviceEnvironment := semconv.DeploymentEnvironmentKey.String(environment)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			serviceName,
			serviceVersion,
			serviceNamespace,
			serviceCommitHash,
			serviceEnvironment,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if otelCollectorUrl != "" {
		conn, err := initGrpcConn(otelCollectorUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}

		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
		options = append(options, sdktrace.WithSpanProcessor(bsp))
	}

	tracerProvider := sdktrace.NewTracerProvider(options...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

func initGrpcConn(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	return conn, nil
}

func EarlyApplicationFailed(title, action string) string {
	result := `
-----------------------------------------
Application Failed to Start
-----------------------------------------

# What's wrong?
%s

# How to fix it?
%s

`

	result = fmt.Sprintf(result, title, action)
	return result
}
