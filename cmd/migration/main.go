package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/icl-ladder/internal/app"
	"github.com/riskibarqy/icl-ladder/internal/config"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
)

const dirFlag = "dir"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migration",
		Usage: "Manage the Postgres season ledger schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    dirFlag,
				Usage:   "Migrations directory",
				EnvVars: []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply every pending migration",
				Action: func(cCtx *cli.Context) error {
					return withMigrator(cCtx, func(m *app.Migrator) error {
						return m.Up()
					})
				},
			},
			{
				Name:      "down",
				Usage:     "Roll back migrations",
				ArgsUsage: "[steps]",
				Action: func(cCtx *cli.Context) error {
					steps, err := parseSteps(cCtx.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(cCtx, func(m *app.Migrator) error {
						return m.Down(steps)
					})
				},
			},
			{
				Name:  "version",
				Usage: "Print the applied schema version",
				Action: func(cCtx *cli.Context) error {
					return withMigrator(cCtx, func(m *app.Migrator) error {
						version, dirty, ok, err := m.Version()
						if err != nil {
							return err
						}
						if !ok {
							fmt.Fprintln(cCtx.App.Writer, "version: none")
						} else {
							fmt.Fprintf(cCtx.App.Writer, "version: %d\n", version)
						}
						fmt.Fprintf(cCtx.App.Writer, "dirty: %t\n", dirty)
						return nil
					})
				},
			},
			{
				Name:      "force",
				Usage:     "Set the schema version without running migrations",
				ArgsUsage: "<version>",
				Action: func(cCtx *cli.Context) error {
					version, err := parseVersion(cCtx.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(cCtx, func(m *app.Migrator) error {
						return m.Force(version)
					})
				},
			},
			{
				Name:      "goto",
				Aliases:   []string{"migrate"},
				Usage:     "Migrate up or down to a target version",
				ArgsUsage: "<version>",
				Action: func(cCtx *cli.Context) error {
					target, err := parseTarget(cCtx.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(cCtx, func(m *app.Migrator) error {
						return m.Goto(target)
					})
				},
			},
		},
	}
}

func withMigrator(cCtx *cli.Context, fn func(m *app.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(logging.FormatConsole, cfg.LogLevel, cCtx.App.ErrWriter)
	defer func() {
		_ = logger.Sync()
	}()

	candidates := append([]string{cCtx.String(dirFlag)}, app.DefaultMigrationDirs...)
	dir, err := app.ResolveMigrationsDir(candidates...)
	if err != nil {
		return err
	}

	m, err := app.NewMigrator(cfg, dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()
	return fn(m)
}

func parseSteps(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", raw, err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("force requires a version argument")
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}
	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("goto requires a target version argument")
	}
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}
