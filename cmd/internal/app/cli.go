package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fooddecider/cmd/internal/store"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X fooddecider/cmd/internal/app.Version=...".
var Version = "dev"

// migrationRunner is the part of *store.Migrator the migrate commands use.
type migrationRunner interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

// openMigrator is replaced in tests.
var openMigrator = func(databaseURL string) (migrationRunner, error) {
	return store.NewMigrator(databaseURL)
}

// NewRootCmd builds the fooddecider command tree. Running it without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	serve := newServeCmd()

	cmd := &cobra.Command{
		Use:           "fooddecider",
		Short:         "Meal suggestion API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			log := NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)

			a, err := New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(Version)
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the embedded schema migrations.
The database URL comes from --database-url or FD_DATABASE_URL.`,
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default $FD_DATABASE_URL)")

	withMigrator := func(cmd *cobra.Command, fn func(migrationRunner) error) error {
		url := strings.TrimSpace(databaseURL)
		if url == "" {
			url = EnvString("FD_DATABASE_URL", "")
		}
		if url == "" {
			return errors.New("migrate: FD_DATABASE_URL or --database-url is required")
		}
		m, err := openMigrator(url)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := m.Close(); cerr != nil {
				cmd.PrintErrln("migrate: close:", cerr)
			}
		}()
		return fn(m)
	}

	printVersion := func(cmd *cobra.Command, m migrationRunner) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		cmd.Printf("version %d (dirty=%t)\n", v, dirty)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrationRunner) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration (drops all data)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrationRunner) error {
					if err := m.Down(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m migrationRunner) error {
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("migrate force: invalid version %q", args[0])
				}
				return withMigrator(cmd, func(m migrationRunner) error {
					if err := m.Force(v); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
	)

	return cmd
}
