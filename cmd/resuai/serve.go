package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resuai/internal/config"
	"github.com/jonathan/resuai/internal/db"
	"github.com/jonathan/resuai/internal/drafts"
	"github.com/jonathan/resuai/internal/llm"
	"github.com/jonathan/resuai/internal/logger"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/rendering"
	"github.com/jonathan/resuai/internal/server"
	"github.com/jonathan/resuai/internal/server/ratelimit"
	"github.com/jonathan/resuai/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the portfolio, edit and draft endpoints.
Requires DATABASE_URL, GEMINI_API_KEY, JWT_SECRET and a reachable Redis.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	sessions, err := drafts.NewRedisStore(ctx, cfg.Redis, cfg.DraftTTL())
	if err != nil {
		return err
	}
	defer sessions.Close()

	pictures, err := pictureStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	renderer := rendering.NewRenderer(cfg.ChromePath, cfg.RenderTimeoutDuration())
	if _, ok := renderer.(rendering.Unavailable); ok {
		log.Warn("no headless browser found, PDF previews are disabled")
	}

	builder := &portfolio.Builder{
		Client:   client,
		Store:    database,
		Pictures: pictures,
		Avatars:  cfg.AvatarsOn(),
		Log:      log,
	}

	srv, err := server.New(cfg.Port, server.Deps{
		Users:      database,
		Portfolios: database,
		Sessions:   &portfolio.Sessions{Store: database, Editors: sessions},
		Builder:    builder,
		Drafts: &drafts.Service{
			Client:   client,
			Store:    sessions,
			Renderer: renderer,
			Builder:  builder,
			Log:      log,
		},
		JWT:       server.NewJWTService(jwtConfig),
		Passwords: passwordConfig,
		Limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Metrics:   server.NewMetrics(),
		Log:       log,
		Ping: func(ctx context.Context) error {
			if err := database.Ping(ctx); err != nil {
				return err
			}
			return sessions.Ping(ctx)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// pictureStore returns the MinIO store when configured, otherwise pictures
// are inlined into the document.
func pictureStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.PictureStore, error) {
	if !cfg.MinIO.Enabled() {
		log.Info("object store not configured, pictures are stored inline")
		return storage.InlineStore{}, nil
	}
	store, err := storage.NewMinIOStore(ctx, cfg.MinIO)
	if err != nil {
		return nil, err
	}
	log.Info("storing pictures in object store", "endpoint", cfg.MinIO.Endpoint, "bucket", cfg.MinIO.Bucket)
	return store, nil
}
