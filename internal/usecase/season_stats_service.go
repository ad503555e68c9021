package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/platform/cache"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
)

var errRemoteMiss = errors.New("remote stats miss")

type SeasonStatsConfig struct {
	DefaultSeason string
	LocalFallback bool
	CacheTTL      time.Duration
}

// SeasonStatsService looks a player's season line up remotely and falls back to
// the loaded records when the remote is missing or unavailable.
type SeasonStatsService struct {
	provider seasonstats.Provider
	repo     gamelog.Repository
	cfg      SeasonStatsConfig
	cache    *cache.Store[seasonstats.Summary]
	logger   *logging.Logger
}

// NewSeasonStatsService accepts a nil provider when remote lookups are disabled.
func NewSeasonStatsService(provider seasonstats.Provider, repo gamelog.Repository, cfg SeasonStatsConfig, logger *logging.Logger) *SeasonStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonStatsService{
		provider: provider,
		repo:     repo,
		cfg:      cfg,
		cache:    cache.NewStore[seasonstats.Summary](cfg.CacheTTL),
		logger:   logger.With("component", "season_stats_service"),
	}
}

func (s *SeasonStatsService) Lookup(ctx context.Context, name, season string) (seasonstats.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonStatsService.Lookup")
	defer span.End()

	key := gamelog.NormalizeName(name)
	if key == "" {
		return seasonstats.Summary{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	season = strings.TrimSpace(season)
	if season == "" {
		season = s.cfg.DefaultSeason
	}
	start, end, err := seasonWindow(season)
	if err != nil {
		return seasonstats.Summary{}, err
	}

	var remoteErr error
	if s.provider != nil {
		summary, err := s.cache.GetOrLoad(ctx, key+"|"+season, func(ctx context.Context) (seasonstats.Summary, error) {
			return s.lookupRemote(ctx, name, key, season)
		})
		if err == nil {
			return summary, nil
		}
		remoteErr = err
		s.logger.WarnContext(ctx, "remote season stats lookup failed",
			"player", key,
			"season", season,
			"error", err,
		)
	}

	if !s.cfg.LocalFallback {
		if remoteErr == nil {
			return seasonstats.Summary{}, fmt.Errorf("%w: remote stats lookup is disabled", ErrDependencyUnavailable)
		}
		return seasonstats.Summary{}, fmt.Errorf("%w: player=%q season=%s: %v", ErrNotFound, strings.TrimSpace(name), season, remoteErr)
	}

	return s.lookupLocal(ctx, key, season, start, end)
}

func (s *SeasonStatsService) lookupRemote(ctx context.Context, name, key, season string) (seasonstats.Summary, error) {
	player, found, err := s.provider.SearchPlayer(ctx, strings.TrimSpace(name))
	if err != nil {
		return seasonstats.Summary{}, fmt.Errorf("%w: search player: %v", ErrDependencyUnavailable, err)
	}
	if !found {
		return seasonstats.Summary{}, fmt.Errorf("%w: player=%s", errRemoteMiss, key)
	}

	summary, found, err := s.provider.FetchSeasonStats(ctx, player.ID, season)
	if err != nil {
		return seasonstats.Summary{}, fmt.Errorf("%w: fetch season stats: %v", ErrDependencyUnavailable, err)
	}
	if !found {
		return seasonstats.Summary{}, fmt.Errorf("%w: player_id=%d season=%s", errRemoteMiss, player.ID, season)
	}

	summary.Player = player
	summary.Season = season
	summary.Source = seasonstats.SourceRemote
	return summary, nil
}

// lookupLocal summarizes the loaded records that fall inside the season window.
func (s *SeasonStatsService) lookupLocal(ctx context.Context, key, season string, start, end time.Time) (seasonstats.Summary, error) {
	records, err := s.repo.ListByName(ctx, key)
	if err != nil {
		return seasonstats.Summary{}, fmt.Errorf("list records by name: %w", err)
	}

	inSeason := make([]gamelog.Record, 0, len(records))
	for _, rec := range records {
		if !rec.Date.Before(start) && rec.Date.Before(end) {
			inSeason = append(inSeason, rec)
		}
	}
	if len(inSeason) == 0 {
		return seasonstats.Summary{}, fmt.Errorf("%w: player=%s season=%s", ErrNotFound, key, season)
	}

	latest := inSeason[0]
	summary := seasonstats.Summary{
		Player:      seasonstats.Player{Name: latest.Name, Team: latest.Team},
		Season:      season,
		Source:      seasonstats.SourceLocalRecords,
		GamesPlayed: len(inSeason),
	}
	if latest.SeasonAvg != nil {
		v := math.Round(*latest.SeasonAvg*100) / 100
		summary.ShotsPerGame = &v
	}

	var toiTotal float64
	var toiCount int
	for _, rec := range inSeason {
		if rec.TOIMinutes != nil {
			toiTotal += *rec.TOIMinutes
			toiCount++
		}
	}
	if toiCount > 0 {
		avg := toiTotal / float64(toiCount)
		rounded := projection.Round1(avg)
		summary.AvgTOIMinutes = &rounded
		summary.AvgTOI = FormatClock(avg)
	}

	return summary, nil
}

// seasonWindow parses "20232024" into [Sep 1 2023, Sep 1 2024).
func seasonWindow(season string) (time.Time, time.Time, error) {
	if len(season) != 8 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: season must look like 20232024, got %q", ErrInvalidInput, season)
	}
	first, err1 := strconv.Atoi(season[:4])
	second, err2 := strconv.Atoi(season[4:])
	if err1 != nil || err2 != nil || second != first+1 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: season must look like 20232024, got %q", ErrInvalidInput, season)
	}

	start := time.Date(first, time.September, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0), nil
}

// FormatClock renders fractional minutes as "MM:SS".
func FormatClock(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return ""
	}
	total := int(math.Round(minutes * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
