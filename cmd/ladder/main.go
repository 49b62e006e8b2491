package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/icl-ladder/internal/app"
	"github.com/riskibarqy/icl-ladder/internal/config"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
)

const (
	leagueFlag  = "league"
	limitFlag   = "limit"
	summaryFlag = "summary"
)

var version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ladder",
		Usage:   "Score triathlon Inter-Club League rounds and print season ladders",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "process",
				Usage: "Fold every round file waiting in the input directory into the season ledger",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  summaryFlag,
						Usage: "Also write the run summary as YAML to this path",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return withContainer(cCtx, func(c *app.Container) error {
						return runProcess(cCtx.Context, c, cCtx.App.Writer, cCtx.String(summaryFlag))
					})
				},
			},
			{
				Name:  "ladder",
				Usage: "Print the season ladder of a league",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: leagueFlag, Aliases: []string{"l"}, Required: true},
				},
				Action: func(cCtx *cli.Context) error {
					return withContainer(cCtx, func(c *app.Container) error {
						return printSeasonLadder(cCtx.Context, c.Ladders, cCtx.App.Writer, cCtx.String(leagueFlag))
					})
				},
			},
			{
				Name:  "mvp",
				Usage: "Print the season MVP ranking of a league",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: leagueFlag, Aliases: []string{"l"}, Required: true},
					&cli.IntFlag{Name: limitFlag, Aliases: []string{"n"}, Value: 20, Usage: "Rows to print, 0 for all"},
				},
				Action: func(cCtx *cli.Context) error {
					if cCtx.Int(limitFlag) < 0 {
						return fmt.Errorf("--%s must be >= 0", limitFlag)
					}
					return withContainer(cCtx, func(c *app.Container) error {
						return printSeasonMVP(cCtx.Context, c.Ladders, cCtx.App.Writer, cCtx.String(leagueFlag), cCtx.Int(limitFlag))
					})
				},
			},
		},
	}
}

func withContainer(cCtx *cli.Context, fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.FormatConsole, cfg.LogLevel, cCtx.App.ErrWriter)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	c, err := app.New(cCtx.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	return fn(c)
}
