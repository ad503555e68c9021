package httpapi

import (
	"net/http"

	"github.com/riskibarqy/prop-projection/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	query := playersQuery{Date: queryValue(r, "date")}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := parseDate(query.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	names, err := h.projectionService.ListPlayers(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "date", query.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, names)
}

func (h *Handler) GetPlayerProjection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProjection")
	defer span.End()

	line, err := parseOptionalFloat("line", queryValue(r, "line"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := playerProjectionQuery{
		Name:  queryValue(r, "name"),
		Date:  queryValue(r, "date"),
		Stat:  queryValue(r, "stat"),
		Line:  line,
		Basis: queryValue(r, "basis"),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := parseDate(query.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	stat, err := parseStatistic(query.Stat)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	basis, err := parseBasis(query.Basis)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.projectionService.ProjectPlayer(ctx, usecase.PlayerProjectionInput{
		Name:      query.Name,
		Date:      date,
		Statistic: stat,
		Line:      query.Line,
		Basis:     basis,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "project player failed", "player", query.Name, "stat", stat, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerProjectionToDTO(result))
}

func (h *Handler) ListPlayerHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerHistory")
	defer span.End()

	limit, err := parseOptionalInt("limit", queryValue(r, "limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := historyQuery{Name: queryValue(r, "name"), Limit: limit}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	records, err := h.projectionService.PlayerHistory(ctx, query.Name, query.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "player history failed", "player", query.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]recordMetricsDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, recordMetricsToDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayerSeasonStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerSeasonStats")
	defer span.End()

	query := seasonStatsQuery{
		Name:   queryValue(r, "name"),
		Season: queryValue(r, "season"),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.seasonStatsService.Lookup(ctx, query.Name, query.Season)
	if err != nil {
		h.logger.WarnContext(ctx, "season stats lookup failed", "player", query.Name, "season", query.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonStatsToDTO(summary))
}
