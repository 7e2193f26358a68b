package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mapforge/geoingest/internal/config"
	"github.com/mapforge/geoingest/internal/geoserver"
	"github.com/mapforge/geoingest/internal/gistool"
	"github.com/mapforge/geoingest/internal/ingest"
	"github.com/mapforge/geoingest/internal/logging"
	"github.com/mapforge/geoingest/internal/postgres"
	"github.com/mapforge/geoingest/internal/spatial"
	"github.com/mapforge/geoingest/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"ingest_max_concurrent", cfg.Ingest.MaxConcurrent,
		"workspace", cfg.GeoServer.Workspace,
	)

	// Parse and configure the connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		slog.Error("failed to parse database config", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database", "name", cfg.Database.Name, "host", cfg.Database.Host)

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Map server client
	publisher := geoserver.NewClient(geoserver.Config{
		BaseURL:    cfg.GeoServer.BaseURL,
		User:       cfg.GeoServer.User,
		Password:   cfg.GeoServer.Password,
		PGHost:     cfg.Database.Host,
		PGPort:     cfg.Database.Port,
		PGDatabase: cfg.Database.Name,
		PGUser:     cfg.Database.User,
		PGPassword: cfg.Database.Password,
		PGSchema:   cfg.Database.Schema,
	})

	// External inspection tools and bulk loader
	runner := gistool.ExecRunner{}
	loader := &spatial.Loader{
		ConverterTool: cfg.Tools.Shp2Pgsql,
		ClientTool:    cfg.Tools.Psql,
		Conn: spatial.ConnParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Name,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Schema:   cfg.Database.Schema,
		},
	}

	service := ingest.NewService(
		postgres.NewUploadRepo(pool),
		postgres.NewCatalogRepo(pool),
		publisher,
		gistool.VectorInspector{Tool: cfg.Tools.OGRInfo, Runner: runner},
		gistool.RasterInspector{Tool: cfg.Tools.GDALInfo, Runner: runner},
		loader,
		spatial.NewStore(pool, cfg.Database.Schema),
		ingest.NewLimiter(cfg.Ingest.MaxConcurrent),
		ingest.Options{
			Workspace:     cfg.GeoServer.Workspace,
			ScratchDir:    cfg.Storage.ScratchDir,
			RasterDir:     cfg.Storage.RasterDir,
			PublicBaseURL: cfg.GeoServer.PublicBase(),
		},
	)

	server := web.NewServer(service, cfg.Storage.ScratchDir, cfg.Ingest.MaxFileSize)

	// Graceful shutdown: stop accepting requests, then drain pipelines.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		limiter := service.Limiter()
		if limiter.Active() > 0 {
			slog.Info("waiting for ingestion pipelines to finish", "active", limiter.Active())
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("pipelines did not finish in time", "error", err)
			} else {
				slog.Info("all pipelines finished")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	err = server.Start(cfg.Server.Addr(),
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	if err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
