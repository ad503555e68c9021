package httpapi

import (
	"net/http"
)

func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDates")
	defer span.End()

	dates, err := h.projectionService.ListDates(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list dates failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, formatDates(dates))
}

func (h *Handler) ListSlateProjections(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSlateProjections")
	defer span.End()

	query := slateQuery{
		Date: queryValue(r, "date"),
		Stat: queryValue(r, "stat"),
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

	slate, err := h.projectionService.ProjectSlate(ctx, *date, stat)
	if err != nil {
		h.logger.WarnContext(ctx, "project slate failed", "date", query.Date, "stat", stat, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, slateProjectionToDTO(slate))
}

func (h *Handler) GetSeasonReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonReport")
	defer span.End()

	query := seasonReportQuery{Stat: queryValue(r, "stat")}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}
	stat, err := parseStatistic(query.Stat)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.projectionService.SeasonReport(ctx, stat)
	if err != nil {
		h.logger.WarnContext(ctx, "season report failed", "stat", stat, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonReportToDTO(report))
}
