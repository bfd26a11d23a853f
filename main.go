package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intake-app/config"
	"intake-app/database"
	"intake-app/idgen"
	"intake-app/middleware"
	"intake-app/migration"
	"intake-app/routes"
	seed "intake-app/seeder"
	"intake-app/wms/activity"
	"intake-app/wms/quality"
	"intake-app/wms/shipment"

	"github.com/bsm/redislock"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Produce intake, grading and reconciliation service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		idgen.Init(config.NodeID)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database if needed and migrate every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := openAndMigrate()
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openAndMigrate()
		if err != nil {
			return err
		}
		return seed.RunSeeders(db, config.GetLogger())
	},
}

var (
	tokenUserID int
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Issue an operator token signed with JWT_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := middleware.IssueToken(tokenUserID, args[0], config.JWTSecret, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().IntVar(&tokenUserID, "user-id", 1, "user id claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	rootCmd.RunE = runServe
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
}

func openAndMigrate() (*gorm.DB, error) {
	log := config.GetLogger()
	if err := database.EnsureDatabaseExists(config.DBName); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}
	db, err := database.Open()
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migration.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.WithField("db", config.DBName).Info("database migrated")
	return db, nil
}

func newLocker(ctx context.Context) (shipment.Locker, func(), error) {
	if config.RedisAddress == "" {
		return shipment.NewKeyedMutex(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", config.RedisAddress, err)
	}
	config.GetLogger().WithField("addr", config.RedisAddress).Info("using redis shipment locks")
	return shipment.NewRedisLocker(redislock.New(client), 10*time.Second), func() { client.Close() }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := config.GetLogger()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openAndMigrate()
	if err != nil {
		return err
	}
	if err := seed.RunSeeders(db, log); err != nil {
		return err
	}

	grading, err := config.LoadGradingConfig(config.GradingConfigPath)
	if err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(ctx)
	if err != nil {
		return err
	}
	defer closeLocker()

	store := activity.NewGormStore(db)
	sink := activity.NewAsyncSink(store, 512, log)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	config.SetupCORS(app)
	routes.Setup(app, routes.Deps{
		DB:        db,
		Log:       log,
		Activity:  sink,
		Store:     store,
		Locker:    locker,
		Diagnoser: quality.NewHTTPDiagnoser(config.QCServiceURL, config.QCTimeout),
		Grading:   grading,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", config.APP_PORT).Info("server listening")
		errCh <- app.Listen(":" + config.APP_PORT)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err = app.ShutdownWithContext(shutdownCtx)
		if closeErr := sink.Close(shutdownCtx); closeErr != nil {
			log.WithError(closeErr).Warn("activity log not fully flushed")
		}
	}
	if dropped := sink.Dropped(); dropped > 0 {
		log.WithField("dropped", dropped).Warn("activity events were dropped")
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
