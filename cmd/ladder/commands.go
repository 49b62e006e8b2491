package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/icl-ladder/internal/app"
	"github.com/riskibarqy/icl-ladder/internal/domain/ladder"
	"github.com/riskibarqy/icl-ladder/internal/usecase"
)

type seasonReader interface {
	SeasonLadder(ctx context.Context, league string) ([]ladder.Standing, error)
	SeasonMVP(ctx context.Context, league string, limit int) ([]ladder.MVPEntry, error)
}

// runProcess promotes a waiting season configuration, folds the inbox and prints
// the run summary. Failed files make the command exit non-zero after the whole
// batch has run.
func runProcess(ctx context.Context, c *app.Container, out io.Writer, summaryPath string) error {
	if err := c.Inbox.Ensure(); err != nil {
		return err
	}
	seasonPath, err := c.Inbox.PromoteSeasonConfig(ctx, app.ValidateSeasonConfig)
	if err != nil {
		return fmt.Errorf("season configuration: %w", err)
	}
	c.Logger.InfoContext(ctx, "season configuration ready", "path", seasonPath)

	summary, err := c.Batch.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeSummary(out, summary); err != nil {
		return err
	}
	if summaryPath != "" {
		f, err := os.Create(summaryPath)
		if err != nil {
			return fmt.Errorf("create summary file: %w", err)
		}
		if err := writeSummary(f, summary); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close summary file: %w", err)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d round files failed", summary.Failed, len(summary.Files))
	}
	return nil
}

func writeSummary(w io.Writer, summary usecase.BatchSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}

func printSeasonLadder(ctx context.Context, ladders seasonReader, out io.Writer, league string) error {
	items, err := ladders.SeasonLadder(ctx, league)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCLUB\tPART P\tPER P\tTOTAL\tADJUSTED\tELIGIBLE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\n",
			item.Rank,
			item.Club.Name,
			item.ParticipationPoints,
			item.PerformancePoints,
			item.TotalPoints,
			item.AdjustedTotalPoints,
			item.ICLEligibleNumber,
		)
	}
	return tw.Flush()
}

func printSeasonMVP(ctx context.Context, ladders seasonReader, out io.Writer, league string, limit int) error {
	items, err := ladders.SeasonMVP(ctx, league, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tATHLETE\tTA NUMBER\tCLUB\tCATEGORY\tPOINTS")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			item.Rank,
			item.FullName,
			item.TANumber,
			item.Club.Name,
			item.Category,
			item.Points,
		)
	}
	return tw.Flush()
}
