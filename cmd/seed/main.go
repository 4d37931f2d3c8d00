package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

type options struct {
	configFile    string
	envFiles      []string
	fixtures      string
	productsCSV   string
	reset         bool
	migrate       bool
	adminEmail    string
	adminPassword string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo catalog data and an admin account",
		Long: `Load categories, products and a back office admin into the store database.

Without --fixtures the embedded demo catalog is used. Running the command
again is safe: categories are matched by slug, products by SKU and the
admin by email.`,
		Example: `  seed
  seed --reset --admin-email owner@shop.test --admin-password s3cretpass
  seed --fixtures ./fixtures/catalog.yaml --env-file .env.staging
  seed --products-csv ./catalog.csv`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.toml)")
	f.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default: .env.local, .env)")
	f.StringVarP(&opts.fixtures, "fixtures", "f", "", "YAML fixtures file (default: embedded demo catalog)")
	f.StringVar(&opts.productsCSV, "products-csv", "", "CSV file with extra products (sku,name,category,price,stock,...)")
	f.BoolVar(&opts.reset, "reset", false, "delete all store data before seeding")
	f.BoolVar(&opts.migrate, "migrate", false, "create missing tables from the entity definitions first")
	f.StringVar(&opts.adminEmail, "admin-email", "", "admin account email (overrides fixtures)")
	f.StringVar(&opts.adminPassword, "admin-password", "", "admin account password (overrides fixtures)")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	if _, err := config.LoadEnvFiles(opts.envFiles...); err != nil {
		return fmt.Errorf("failed to read dotenv file: %w", err)
	}
	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Output: "stdout"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	fixtures, err := loadFixtures(opts)
	if err != nil {
		return err
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel("warn"), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabase(cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.migrate || cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return err
		}
	}
	if opts.reset {
		log.Warn("Deleting all store data")
		if err := persistence.Truncate(db.DB.WithContext(ctx)); err != nil {
			return err
		}
	}

	seeder := seed.NewSeeder(
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		log,
	)
	if _, err := seeder.Run(ctx, fixtures); err != nil {
		log.Error("Seed failed", zap.Error(err))
		return err
	}
	return nil
}

func loadFixtures(opts *options) (*seed.Fixtures, error) {
	var (
		f   *seed.Fixtures
		err error
	)
	if opts.fixtures != "" {
		f, err = seed.LoadFile(opts.fixtures)
	} else {
		f, err = seed.Default()
	}
	if err != nil {
		return nil, err
	}

	if opts.productsCSV != "" {
		products, err := seed.LoadProductsCSV(opts.productsCSV)
		if err != nil {
			return nil, err
		}
		f.Products = append(f.Products, products...)
	}

	if opts.adminEmail != "" || opts.adminPassword != "" {
		if f.Admin == nil {
			f.Admin = &seed.AdminFixture{Name: "Store Admin"}
		}
		if opts.adminEmail != "" {
			f.Admin.Email = opts.adminEmail
		}
		if opts.adminPassword != "" {
			f.Admin.Password = opts.adminPassword
		}
	}
	return f, nil
}
