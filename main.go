package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logging"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalog",
		Short:        "Product catalog REST service",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newImportCmd())
	root.RunE = serve.RunE
	return root
}

// app bundles what both commands need: configuration, logger and storage.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	products repositories.ProductRepository
	users    repositories.UserRepository
	close    func()
}

func bootstrap() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg, log: log, close: func() {}}
	if cfg.DBDriver == config.DriverMemory {
		a.products = repositories.NewMemoryProductRepository()
		return a, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	a.products = repositories.NewGORMProductRepository(db)
	a.users = repositories.NewGORMUserRepository(db)
	a.close = func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return a, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	log := a.log
	cfg := a.cfg

	if cfg.SeedDemo {
		seedProducts(ctx, a.products, log)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		auditLog := log.With().Str("component", "product_audit").Logger()
		err = mqClient.ConsumeProductEvents(func(evt models.ProductEvent) error {
			auditLog.Info().
				Str("event", evt.Type).
				Str("product_id", evt.ProductID).
				Time("occurred_at", evt.OccurredAt).
				Msg("product event")
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to start product event consumer")
		}
	}

	productService := services.NewProductService(
		a.products,
		publisher,
		services.NewLinkBuilder(cfg.ProductsPath()),
		log,
	)
	deps := server.Deps{Products: productService, Log: log}
	if cfg.AuthEnabled {
		deps.Auth = services.NewAuthService(a.users, cfg.JWTSecret, cfg.TokenDuration)
	}
	fiberApp := server.New(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("driver", cfg.DBDriver).Msg("starting server")
		errCh <- fiberApp.Listen(cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import products from a CSV file into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			if a.cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("import needs a persistent DB_DRIVER, not %q", a.cfg.DBDriver)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := services.NewProductService(a.products, nil, services.NewLinkBuilder(a.cfg.ProductsPath()), a.log)
			n, err := svc.ImportCSV(cmd.Context(), f)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products from %s\n", n, args[0])
			return err
		},
	}
}

// seedProducts stores a few demo products.
func seedProducts(ctx context.Context, repo repositories.ProductRepository, log zerolog.Logger) {
	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: "1200.00", StockQuantity: "10", Weight: "2.1"},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: "75.00", StockQuantity: "25", Weight: "0.9"},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: "25.00", StockQuantity: "50", Weight: "0.1"},
	}
	for i := range products {
		if err := repo.Save(ctx, &products[i]); err != nil {
			log.Error().Err(err).Str("name", products[i].Name).Msg("failed to seed product")
			continue
		}
		log.Info().Str("name", products[i].Name).Str("product_id", products[i].ID).Msg("seeded product")
	}
}
