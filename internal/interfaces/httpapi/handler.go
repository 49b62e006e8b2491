package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
	"github.com/riskibarqy/icl-ladder/internal/platform/logging"
	"github.com/riskibarqy/icl-ladder/internal/usecase"
)

const defaultMaxUploadBytes = 20 << 20

// WorkbookReader decodes an uploaded round workbook into its sheets.
type WorkbookReader func(name string, r io.Reader) ([]schema.Table, error)

// RoundFileNameParser extracts league and round from a "<League> Round <N> <Event>.xlsx" name.
type RoundFileNameParser func(name string) (league string, round int, ok bool)

type Handler struct {
	ladderService  *usecase.LadderService
	roundService   *usecase.RoundService
	readWorkbook   WorkbookReader
	parseFileName  RoundFileNameParser
	maxUploadBytes int64
	logger         *logging.Logger
	validator      *validator.Validate
}

// NewHandler wires the HTTP handlers. roundService may be nil for a read-only API.
func NewHandler(
	ladderService *usecase.LadderService,
	roundService *usecase.RoundService,
	readWorkbook WorkbookReader,
	parseFileName RoundFileNameParser,
	maxUploadBytes int64,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{
		ladderService:  ladderService,
		roundService:   roundService,
		readWorkbook:   readWorkbook,
		parseFileName:  parseFileName,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.ladderService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, name := range leagues {
		items = append(items, leagueDTO{Name: name})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSeasonLadder(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonLadder", leagueAttr(league))
	defer span.End()

	standings, err := h.ladderService.SeasonLadder(ctx, league)
	if err != nil {
		h.logger.WarnContext(ctx, "get season ladder failed", "league", league, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}

type seasonMVPRequest struct {
	League string `validate:"required,max=200"`
	Limit  int    `validate:"gte=0,lte=1000"`
}

func (h *Handler) GetSeasonMVP(w http.ResponseWriter, r *http.Request) {
	req := seasonMVPRequest{League: strings.TrimSpace(r.PathValue("league"))}
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonMVP", leagueAttr(req.League))
	defer span.End()

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		req.Limit = v
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.ladderService.SeasonMVP(ctx, req.League, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get season mvp failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, mvpToDTO(entries))
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds", leagueAttr(league))
	defer span.End()

	rounds, err := h.ladderService.ListRounds(ctx, league)
	if err != nil {
		h.logger.WarnContext(ctx, "list rounds failed", "league", league, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]roundSummaryDTO, 0, len(rounds))
	for _, item := range rounds {
		items = append(items, roundSummaryToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetRoundLadder(w http.ResponseWriter, r *http.Request) {
	league := r.PathValue("league")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundLadder", leagueAttr(league))
	defer span.End()

	round, err := strconv.Atoi(strings.TrimSpace(r.PathValue("round")))
	if err != nil || round <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: round must be a positive integer", usecase.ErrInvalidInput))
		return
	}

	standings, err := h.ladderService.RoundLadder(ctx, league, round)
	if err != nil {
		h.logger.WarnContext(ctx, "get round ladder failed", "league", league, "round", round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}

type processRoundRequest struct {
	FileName string `validate:"required,max=255"`
	League   string `validate:"required,max=200"`
	Round    int    `validate:"required,gt=0"`
}

// ProcessRound folds one uploaded round workbook into the ledger. League and
// round come from form fields, or from the file name when the fields are absent.
func (h *Handler) ProcessRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProcessRound")
	defer span.End()

	if h.roundService == nil || h.readWorkbook == nil {
		writeError(ctx, w, fmt.Errorf("%w: round processing is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: parse multipart form: %v", usecase.ErrInvalidInput, err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: form file \"file\" is required", usecase.ErrInvalidInput))
		return
	}
	defer file.Close()

	req, err := h.roundRequest(r, filepath.Base(header.Filename))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sheets, err := h.readWorkbook(req.FileName, file)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read workbook %s: %v", usecase.ErrInvalidInput, req.FileName, err))
		return
	}

	result, err := h.roundService.ProcessRound(ctx, usecase.ProcessRoundInput{
		FileName: req.FileName,
		League:   req.League,
		Round:    req.Round,
		Sheets:   sheets,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "process round failed", "file", req.FileName, "league", req.League, "round", req.Round, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, reportToDTO(result.Report, result.ReportPath))
}

func (h *Handler) roundRequest(r *http.Request, fileName string) (processRoundRequest, error) {
	req := processRoundRequest{
		FileName: fileName,
		League:   strings.TrimSpace(r.FormValue("league")),
	}
	if raw := strings.TrimSpace(r.FormValue("round")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return processRoundRequest{}, fmt.Errorf("%w: round must be an integer", usecase.ErrInvalidInput)
		}
		req.Round = v
	}

	if (req.League == "" || req.Round == 0) && h.parseFileName != nil {
		if league, round, ok := h.parseFileName(fileName); ok {
			if req.League == "" {
				req.League = league
			}
			if req.Round == 0 {
				req.Round = round
			}
		}
	}
	return req, nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
