package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/riskibarqy/icl-ladder/internal/config"
	"github.com/riskibarqy/icl-ladder/internal/domain/ledger"
	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/domain/scoring"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/inbox"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/spreadsheet"
	"github.com/riskibarqy/icl-ladder/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/icl-ladder/internal/platform/id"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
	"github.com/riskibarqy/icl-ladder/internal/usecase"
)

// Container holds the wired services shared by the CLI and the API.
type Container struct {
	Config  config.Config
	Logger  *logging.Logger
	Inbox   *inbox.Inbox
	Ledger  ledger.Repository
	Rounds  *usecase.RoundService
	Batch   *usecase.BatchService
	Ladders *usecase.LadderService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rules := scoring.DefaultRules()
	policy, err := scoring.PolicyByName(cfg.ParticipationPolicy)
	if err != nil {
		return nil, fmt.Errorf("participation policy: %w", err)
	}
	rules.Participation = policy

	ledgerRepo, closeLedger, err := newLedgerRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	box := inbox.New(inbox.Dirs{
		Input:      cfg.InputDir,
		Processed:  cfg.ProcessedDir,
		Season:     cfg.SeasonDir,
		SeasonFile: cfg.SeasonConfigFile,
	})
	seasonSource := spreadsheet.NewSeasonSource(cfg.SeasonConfigPath())
	reports := spreadsheet.NewReportWriter(cfg.OutputDir)

	rounds := usecase.NewRoundService(seasonSource, ledgerRepo, reports, rules, logger)
	batch := usecase.NewBatchService(
		&roundFileStore{inbox: box},
		rounds,
		idgen.NewRunIDGenerator(),
		cfg.BatchLoadWorkers,
		logger,
	)

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Inbox:   box,
		Ledger:  ledgerRepo,
		Rounds:  rounds,
		Batch:   batch,
		Ladders: usecase.NewLadderService(ledgerRepo),
	}
	if closeLedger != nil {
		c.closers = append(c.closers, closeLedger)
	}
	return c, nil
}

// ValidateSeasonConfig reports whether path holds a usable season configuration.
func ValidateSeasonConfig(path string) error {
	workbook, err := spreadsheet.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = spreadsheet.SeasonFromWorkbook(workbook)
	return err
}

func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	readWorkbook := func(name string, r io.Reader) ([]schema.Table, error) {
		workbook, err := spreadsheet.Read(name, r)
		if err != nil {
			return nil, err
		}
		return workbook.Sheets, nil
	}
	parseFileName := func(name string) (string, int, bool) {
		file, ok := inbox.ParseRoundFileName(name)
		return file.League, file.Round, ok
	}

	handler := httpapi.NewHandler(c.Ladders, c.Rounds, readWorkbook, parseFileName, c.Config.MaxUploadBytes, c.Logger)
	router := httpapi.NewRouter(handler, c.Logger, c.Config.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
