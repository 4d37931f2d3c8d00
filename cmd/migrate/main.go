package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

type options struct {
	configFile string
	dir        string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Storefront database migration tool",
		Long: `Apply and manage the versioned PostgreSQL schema migrations.

Migrations are embedded in the binary. Pass --dir to run them from a
directory on disk instead. Connection settings come from config.toml and
STORE_DATABASE_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.toml)")
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		withMigrator(opts, &cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs},
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() }),
		withMigrator(opts, &cobra.Command{Use: "down", Short: "Roll back all migrations", Args: cobra.NoArgs},
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() }),
		withMigrator(opts, &cobra.Command{
			Use:     "step <n>",
			Short:   "Apply n migrations (negative rolls back)",
			Example: "  migrate step -- -1",
			Args:    cobra.ExactArgs(1),
		}, func(m *migration.Migrator, _ *zap.Logger, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		withMigrator(opts, &cobra.Command{Use: "goto <version>", Short: "Migrate to a specific version", Args: cobra.ExactArgs(1)},
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		withMigrator(opts, &cobra.Command{Use: "version", Short: "Show the current migration version", Args: cobra.NoArgs},
			func(m *migration.Migrator, log *zap.Logger, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
				return nil
			}),
		withMigrator(opts, &cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations",
			Long:  "Clears the dirty flag after a failed migration was fixed by hand.",
			Args:  cobra.ExactArgs(1),
		}, func(m *migration.Migrator, log *zap.Logger, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			log.Warn("Forcing migration version", zap.Int("version", v))
			return m.Force(v)
		}),
		newDropCmd(opts),
		newCreateCmd(opts),
		newListCmd(opts),
	)
	return root
}

func newDropCmd(opts *options) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every database object (destructive)",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping all tables")
	return withMigrator(opts, cmd, func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		if !confirm {
			return errors.New("drop cancelled, rerun with --confirm")
		}
		log.Warn("Dropping all database objects")
		return m.Drop()
	})
}

func newCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a new up/down migration pair",
		Example: "  migrate create add_coupon_table",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "migrations"
			}
			f, err := migration.Create(dir, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", f.UpPath, f.DownPath)
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fsys fs.FS = migrations.FS
			if opts.dir != "" {
				fsys = os.DirFS(opts.dir)
			}
			files, err := migration.List(fsys)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "no migrations found")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(out, "%06d  %s\n", f.Version, f.Name)
			}
			return nil
		},
	}
}

// withMigrator attaches a RunE that opens the database, builds the migrator
// and closes both once fn returns.
func withMigrator(opts *options, cmd *cobra.Command, fn func(*migration.Migrator, *zap.Logger, []string) error) *cobra.Command {
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		log, err := logger.New(logger.Config{Level: opts.logLevel, Format: "console", Output: "stdout"})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		if _, err := config.LoadEnvFiles(); err != nil {
			return err
		}
		cfg, err := config.LoadFile(opts.configFile)
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		var m *migration.Migrator
		if opts.dir != "" {
			m, err = migration.NewFromDir(db, opts.dir, log)
		} else {
			m, err = migration.New(db, migrations.FS, log)
		}
		if err != nil {
			return err
		}
		defer m.Close()

		log.Info("Migration command started", zap.String("command", cmd.Name()))
		if err := fn(m, log, args); err != nil {
			log.Error("Migration command failed", zap.String("command", cmd.Name()), zap.Error(err))
			return err
		}
		return nil
	}
	return cmd
}
