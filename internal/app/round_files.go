package app

import (
	"context"

	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/inbox"
	"github.com/riskibarqy/icl-ladder/internal/infrastructure/spreadsheet"
	"github.com/riskibarqy/icl-ladder/internal/usecase"
)

// roundFileStore serves batch runs from the inbox directories.
type roundFileStore struct {
	inbox *inbox.Inbox
}

func (s *roundFileStore) Discover(ctx context.Context) ([]usecase.RoundFile, error) {
	files, err := s.inbox.Discover(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.RoundFile, 0, len(files))
	for _, file := range files {
		out = append(out, usecase.RoundFile{
			Name:   file.Name,
			Path:   file.Path,
			League: file.League,
			Round:  file.Round,
		})
	}
	return out, nil
}

func (s *roundFileStore) Open(ctx context.Context, file usecase.RoundFile) ([]schema.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workbook, err := spreadsheet.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	return workbook.Sheets, nil
}

func (s *roundFileStore) MarkProcessed(ctx context.Context, file usecase.RoundFile) error {
	_, err := s.inbox.MarkProcessed(ctx, inbox.RoundFile{
		Path:   file.Path,
		Name:   file.Name,
		League: file.League,
		Round:  file.Round,
	})
	return err
}
