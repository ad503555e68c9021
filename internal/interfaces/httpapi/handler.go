package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"github.com/riskibarqy/prop-projection/internal/usecase"
)

type Handler struct {
	projectionService  *usecase.ProjectionService
	seasonStatsService *usecase.SeasonStatsService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	projectionService *usecase.ProjectionService,
	seasonStatsService *usecase.SeasonStatsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		projectionService:  projectionService,
		seasonStatsService: seasonStatsService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	count, err := h.projectionService.RecordCount(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "health record count failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, healthDTO{Status: "ok", Records: count})
}

type slateQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
	Stat string `validate:"omitempty,max=32"`
}

type playersQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

type seasonReportQuery struct {
	Stat string `validate:"omitempty,max=32"`
}

type playerProjectionQuery struct {
	Name  string   `validate:"required,max=100"`
	Date  string   `validate:"omitempty,datetime=2006-01-02"`
	Stat  string   `validate:"omitempty,max=32"`
	Line  *float64 `validate:"omitempty,gte=0"`
	Basis string   `validate:"omitempty,max=16"`
}

type historyQuery struct {
	Name  string `validate:"required,max=100"`
	Limit int    `validate:"omitempty,min=1,max=100"`
}

type seasonStatsQuery struct {
	Name   string `validate:"required,max=100"`
	Season string `validate:"omitempty,len=8,numeric"`
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func parseStatistic(raw string) (projection.Statistic, error) {
	stat, err := projection.ParseStatistic(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return stat, nil
}

func parseBasis(raw string) (projection.Basis, error) {
	basis, err := projection.ParseBasis(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return basis, nil
}

// parseDate expects a value that already passed the datetime validator. Blank means nil.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(gamelog.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", usecase.ErrInvalidInput, raw)
	}
	return &date, nil
}

func parseOptionalFloat(key, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", usecase.ErrInvalidInput, key, raw)
	}
	return &v, nil
}

func parseOptionalInt(key, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", usecase.ErrInvalidInput, key, raw)
	}
	return v, nil
}
