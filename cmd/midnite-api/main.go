package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/midniteauto/backend/internal/auth"
	"github.com/midniteauto/backend/internal/chat"
	"github.com/midniteauto/backend/internal/config"
	"github.com/midniteauto/backend/internal/database"
	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/feed"
	"github.com/midniteauto/backend/internal/garage"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/logging"
	"github.com/midniteauto/backend/internal/market"
	"github.com/midniteauto/backend/internal/realtime"
	"github.com/midniteauto/backend/internal/server"
	"github.com/midniteauto/backend/internal/social"
	"github.com/midniteauto/backend/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "midnite-api",
		Short: "Midnite Auto backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")
	cmd.PersistentFlags().Int("session-ttl-minutes", defaults.GetInt("session.ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().String("signing-secret", "", "Session signing secret (overrides env)")
	cmd.PersistentFlags().String("storage-driver", defaults.GetString("storage.driver"), "Object store driver (disk, s3)")
	cmd.PersistentFlags().String("storage-root", defaults.GetString("storage.root"), "Disk object store root directory")
	cmd.PersistentFlags().String("storage-public-base-url", defaults.GetString("storage.public_base_url"), "Public base URL for disk objects")
	cmd.PersistentFlags().String("storage-s3-bucket", defaults.GetString("storage.s3_bucket"), "S3 bucket for the s3 driver")
	cmd.PersistentFlags().String("storage-s3-region", defaults.GetString("storage.s3_region"), "S3 region for the s3 driver")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "session.ttl_minutes", "session-ttl-minutes")
	bindFlag(cmd, "session.signing_secret", "signing-secret")
	bindFlag(cmd, "storage.driver", "storage-driver")
	bindFlag(cmd, "storage.root", "storage-root")
	bindFlag(cmd, "storage.public_base_url", "storage-public-base-url")
	bindFlag(cmd, "storage.s3_bucket", "storage-s3-bucket")
	bindFlag(cmd, "storage.s3_region", "storage-s3-region")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	objects, storageDir, err := buildObjectStore(ctx, appConfig)
	if err != nil {
		return err
	}

	hub := realtime.NewHub()
	gw, err := gateway.New(gateway.Config{
		Database: db,
		Hub:      hub,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SessionSigningKey),
		Issuer:        appConfig.SessionIssuer,
		Audience:      appConfig.SessionAudience,
		TokenTTL:      appConfig.SessionTTL,
	})

	sessions := auth.NewSessionManager()
	sessions.OnChange(func(session auth.Session, active bool) {
		logger.Info("auth state changed",
			zap.String("user_id", session.UserID),
			zap.Bool("active", active))
	})

	profiles := social.NewProfileService(gw)
	aggregator, err := feed.NewAggregator(feed.AggregatorConfig{
		Gateway:  gw,
		Profiles: profiles,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: tokenManager,
		Gateway:      gw,
		Profiles:     profiles,
		Follows:      social.NewFollowService(gw),
		Cars:         garage.NewCarService(gw, objects, logger),
		Parts:        garage.NewPartService(gw),
		Maintenance:  garage.NewMaintenanceService(gw),
		Tasks:        garage.NewTaskService(gw),
		Photos:       garage.NewPhotoService(gw, objects),
		Timeline:     garage.NewTimelineService(gw),
		Events:       events.NewService(gw),
		Chats:        chat.NewService(gw),
		Listings:     market.NewService(gw),
		Feed:         aggregator,
		Sessions:     sessions,
		StorageDir:   storageDir,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// buildObjectStore returns the configured store plus the local directory to
// serve over HTTP, which is empty for the s3 driver.
func buildObjectStore(ctx context.Context, appConfig config.AppConfig) (storage.ObjectStore, string, error) {
	switch appConfig.StorageDriver {
	case config.StorageDriverS3:
		store, err := storage.NewS3Store(ctx, appConfig.S3Region)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := storage.NewDiskStore(appConfig.StorageRoot, appConfig.StoragePublicURL)
		if err != nil {
			return nil, "", err
		}
		return store, appConfig.StorageRoot, nil
	}
}
