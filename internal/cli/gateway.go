package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizlive/internal/config"
	"quizlive/internal/gamesync"
	"quizlive/internal/joinlink"
	"quizlive/internal/logger"
	"quizlive/internal/store"
	"quizlive/internal/store/memory"
	pgstore "quizlive/internal/store/postgres"
	"quizlive/internal/store/redisnotify"
	transport "quizlive/internal/transport/http"
)

// NewGatewayCmd builds the CLI subcommand to start the gateway.
func NewGatewayCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Start the quiz gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd.Context(), *configPath, *port)
		},
	}
}

func runGateway(ctx context.Context, configPath, portFlag string) error {
	log := logger.New("gateway")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}
	qrSize := cfg.Server.QRSize
	if qrSize == 0 {
		qrSize = joinlink.DefaultSize
	}

	// Connectivity probe: pick the connected or the local-only backend once,
	// here, instead of branching on a flag at every call site.
	var backend store.Backend
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		backend = pgstore.New(pool)
		log.Info("using postgres backend")
	} else {
		backend = memory.New()
		log.Warn("postgres not configured, running local-only")
	}

	var notifier store.Notifier = store.NopNotifier{}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, push channel disabled")
		} else {
			notifier = redisnotify.New(client)
			log.Info("redis push channel enabled")
		}
	}

	pollInterval := config.Duration(cfg.Sync.PollInterval, gamesync.DefaultPollInterval)
	gateway := transport.NewGateway(backend, notifier, log, baseURL, qrSize, pollInterval)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      gateway.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quizlive gateway")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("gateway failed to start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down gateway")
	case <-ctx.Done():
		log.Info("context canceled, shutting down gateway")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
