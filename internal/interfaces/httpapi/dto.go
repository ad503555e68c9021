package httpapi

import (
	"math"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/usecase"
)

type healthDTO struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

type recordMetricsDTO struct {
	Name       string   `json:"name"`
	Team       string   `json:"team"`
	Opponent   string   `json:"opponent"`
	Date       string   `json:"date"`
	SeasonAvg  *float64 `json:"season_avg"`
	L5Avg      *float64 `json:"l5_avg"`
	L10Avg     *float64 `json:"l10_avg"`
	TOI        string   `json:"toi"`
	TOIMinutes *float64 `json:"toi_minutes"`
}

type projectionRowDTO struct {
	recordMetricsDTO
	Projection float64 `json:"projection"`
}

type slateProjectionDTO struct {
	Date           string             `json:"date"`
	Statistic      string             `json:"statistic"`
	StatisticLabel string             `json:"statistic_label"`
	Excluded       int                `json:"excluded"`
	Rows           []projectionRowDTO `json:"rows"`
}

type hitRateDTO struct {
	Rate         float64 `json:"rate"`
	Line         float64 `json:"line"`
	Distribution string  `json:"distribution"`
	Input        float64 `json:"input"`
	InputSource  string  `json:"input_source"`
}

type playerProjectionDTO struct {
	recordMetricsDTO
	Statistic      string     `json:"statistic"`
	StatisticLabel string     `json:"statistic_label"`
	Projection     float64    `json:"projection"`
	Basis          string     `json:"basis"`
	HitRate        hitRateDTO `json:"hit_rate"`
}

type slateSummaryDTO struct {
	Date           string            `json:"date"`
	Players        int               `json:"players"`
	Excluded       int               `json:"excluded"`
	MeanProjection float64           `json:"mean_projection"`
	Top            *projectionRowDTO `json:"top,omitempty"`
}

type seasonReportDTO struct {
	Statistic   string            `json:"statistic"`
	WorkerCount int               `json:"worker_count"`
	Slates      []slateSummaryDTO `json:"slates"`
}

type seasonStatsDTO struct {
	PlayerID      int64    `json:"player_id,omitempty"`
	Name          string   `json:"name"`
	Team          string   `json:"team"`
	Season        string   `json:"season"`
	Source        string   `json:"source"`
	GamesPlayed   int      `json:"games_played"`
	Goals         *int     `json:"goals"`
	Shots         *int     `json:"shots"`
	Assists       *int     `json:"assists"`
	AvgTOI        string   `json:"avg_toi"`
	AvgTOIMinutes *float64 `json:"avg_toi_minutes"`
	ShotsPerGame  *float64 `json:"shots_per_game"`
	GoalsPerGame  *float64 `json:"goals_per_game"`
}

func recordMetricsToDTO(r gamelog.Record) recordMetricsDTO {
	return recordMetricsDTO{
		Name:       r.Name,
		Team:       r.Team,
		Opponent:   r.Opponent,
		Date:       r.DateKey(),
		SeasonAvg:  r.SeasonAvg,
		L5Avg:      r.L5Avg,
		L10Avg:     r.L10Avg,
		TOI:        r.TOIRaw.String(),
		TOIMinutes: roundPtr(r.TOIMinutes),
	}
}

func projectedRowToDTO(row usecase.ProjectedRow) projectionRowDTO {
	return projectionRowDTO{
		recordMetricsDTO: recordMetricsToDTO(row.Record),
		Projection:       round2(row.Projection),
	}
}

func slateProjectionToDTO(p usecase.SlateProjection) slateProjectionDTO {
	ranked := p.Ranked()
	rows := make([]projectionRowDTO, 0, len(ranked))
	for _, row := range ranked {
		rows = append(rows, projectedRowToDTO(row))
	}
	return slateProjectionDTO{
		Date:           p.Date.Format(gamelog.DateLayout),
		Statistic:      string(p.Statistic),
		StatisticLabel: p.Statistic.Label(),
		Excluded:       p.Excluded,
		Rows:           rows,
	}
}

func playerProjectionToDTO(p usecase.PlayerProjection) playerProjectionDTO {
	return playerProjectionDTO{
		recordMetricsDTO: recordMetricsToDTO(p.Record),
		Statistic:        string(p.Statistic),
		StatisticLabel:   p.Statistic.Label(),
		Projection:       round2(p.Projection),
		Basis:            string(p.Basis),
		HitRate: hitRateDTO{
			Rate:         p.HitRate.Rate,
			Line:         p.Line,
			Distribution: string(p.HitRate.Distribution),
			Input:        round2(p.HitRate.Input),
			InputSource:  p.HitRate.InputSource,
		},
	}
}

func seasonReportToDTO(r usecase.SeasonReport) seasonReportDTO {
	slates := make([]slateSummaryDTO, 0, len(r.Slates))
	for _, s := range r.Slates {
		item := slateSummaryDTO{
			Date:           s.Date.Format(gamelog.DateLayout),
			Players:        s.Players,
			Excluded:       s.Excluded,
			MeanProjection: s.MeanProjection,
		}
		if s.Top != nil {
			top := projectedRowToDTO(*s.Top)
			item.Top = &top
		}
		slates = append(slates, item)
	}
	return seasonReportDTO{
		Statistic:   string(r.Statistic),
		WorkerCount: r.WorkerCount,
		Slates:      slates,
	}
}

func seasonStatsToDTO(s seasonstats.Summary) seasonStatsDTO {
	return seasonStatsDTO{
		PlayerID:      s.Player.ID,
		Name:          s.Player.Name,
		Team:          s.Player.Team,
		Season:        s.Season,
		Source:        string(s.Source),
		GamesPlayed:   s.GamesPlayed,
		Goals:         s.Goals,
		Shots:         s.Shots,
		Assists:       s.Assists,
		AvgTOI:        s.AvgTOI,
		AvgTOIMinutes: s.AvgTOIMinutes,
		ShotsPerGame:  s.ShotsPerGame,
		GoalsPerGame:  s.GoalsPerGame,
	}
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(gamelog.DateLayout))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := round2(*v)
	return &out
}
