package nhlstats

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"github.com/riskibarqy/prop-projection/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultSearchBaseURL = "https://search.d3.nhle.com"
	defaultStatsBaseURL  = "https://statsapi.web.nhl.com"
	defaultTimeout       = 5 * time.Second
	defaultRetryBackoff  = 500 * time.Millisecond
	searchLimit          = 20
	maxResponseBytes     = 2 << 20
)

var (
	ErrUnavailable  = crerr.New("nhl stats api unavailable")
	errTransient    = crerr.New("nhl stats transient failure")
	errCircuitOpen  = crerr.New("nhl stats circuit open")
	errEmptyPayload = crerr.New("empty response payload")
)

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	SearchBaseURL  string
	StatsBaseURL   string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the public NHL search and stats endpoints. Every failure is
// reported as ErrUnavailable; an empty result is a miss, not an error.
type Client struct {
	httpClient    *fasthttp.Client
	searchBaseURL string
	statsBaseURL  string
	timeout       time.Duration
	maxRetries    int
	retryBackoff  time.Duration
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "prop-projection",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     32,
			MaxResponseBodySize: maxResponseBytes,
		}
	}

	return &Client{
		httpClient:    httpClient,
		searchBaseURL: baseURLOrDefault(cfg.SearchBaseURL, defaultSearchBaseURL),
		statsBaseURL:  baseURLOrDefault(cfg.StatsBaseURL, defaultStatsBaseURL),
		timeout:       timeout,
		maxRetries:    max(cfg.MaxRetries, 0),
		retryBackoff:  backoff,
		logger:        logger.With("component", "nhlstats_client"),
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

func (c *Client) SearchPlayer(ctx context.Context, name string) (seasonstats.Player, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return seasonstats.Player{}, false, nil
	}

	fullURL := c.buildURL(c.searchBaseURL, "/api/v1/search/player",
		"culture", "en-us",
		"limit", strconv.Itoa(searchLimit),
		"q", name,
	)

	var results []searchResult
	if err := c.doJSON(ctx, fullURL, &results); err != nil {
		return seasonstats.Player{}, false, err
	}
	if len(results) == 0 {
		return seasonstats.Player{}, false, nil
	}

	best := pickBestMatch(results, name)
	return seasonstats.Player{
		ID:   int64(best.PlayerID),
		Name: strings.TrimSpace(best.Name),
		Team: strings.TrimSpace(best.TeamAbbrev),
	}, true, nil
}

func (c *Client) FetchSeasonStats(ctx context.Context, playerID int64, season string) (seasonstats.Summary, bool, error) {
	if playerID <= 0 {
		return seasonstats.Summary{}, false, nil
	}

	fullURL := c.buildURL(c.statsBaseURL, "/api/v1/people/"+strconv.FormatInt(playerID, 10)+"/stats",
		"stats", "statsSingleSeason",
		"season", season,
	)

	var payload statsResponse
	if err := c.doJSON(ctx, fullURL, &payload); err != nil {
		return seasonstats.Summary{}, false, err
	}
	if len(payload.Stats) == 0 || len(payload.Stats[0].Splits) == 0 {
		return seasonstats.Summary{}, false, nil
	}

	stat := payload.Stats[0].Splits[0].Stat
	summary := seasonstats.Summary{
		Season:      season,
		Source:      seasonstats.SourceRemote,
		GamesPlayed: stat.Games,
		Goals:       stat.Goals,
		Shots:       stat.Shots,
		Assists:     stat.Assists,
		AvgTOI:      strings.TrimSpace(stat.TimeOnIcePerGame),
	}
	summary.AvgTOIMinutes = gamelog.ParseClock(summary.AvgTOI)
	summary.ShotsPerGame = perGame(stat.Shots, stat.Games)
	summary.GoalsPerGame = perGame(stat.Goals, stat.Games)

	return summary, true, nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, fullURL)
		return reqErr
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "nhl stats circuit breaker rejected request", "state", string(c.breaker.State()))
		return crerr.Mark(crerr.WithSecondaryError(errCircuitOpen, err), ErrUnavailable)
	}
	if err != nil {
		return crerr.Mark(err, ErrUnavailable)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return crerr.Mark(errEmptyPayload, ErrUnavailable)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Mark(crerr.Wrap(err, "decode nhl stats payload"), ErrUnavailable)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, status, err := c.get(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = crerr.Wrapf(errTransient, "send request: %v", err)
		case status >= 200 && status < 300:
			return body, nil
		case isRetryableStatus(status):
			lastErr = crerr.Wrapf(errTransient, "status=%d body=%s", status, abbreviateBody(body))
		default:
			return nil, crerr.Newf("nhl stats status=%d body=%s", status, abbreviateBody(body))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "nhl stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	// resp is pooled; its body must be copied before release.
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

// buildURL joins base, path and alternating key/value query pairs.
func (c *Client) buildURL(base, path string, query ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(base)
	_, _ = buf.WriteString(path)
	for i := 0; i+1 < len(query); i += 2 {
		if i == 0 {
			_ = buf.WriteByte('?')
		} else {
			_ = buf.WriteByte('&')
		}
		_, _ = buf.WriteString(url.QueryEscape(query[i]))
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(url.QueryEscape(query[i+1]))
	}
	return buf.String()
}

func pickBestMatch(results []searchResult, name string) searchResult {
	want := gamelog.NormalizeName(name)
	for _, r := range results {
		if gamelog.NormalizeName(r.Name) == want {
			return r
		}
	}
	return results[0]
}

func perGame(total *int, games int) *float64 {
	if total == nil || games <= 0 {
		return nil
	}
	v := math.Round(float64(*total)/float64(games)*100) / 100
	return &v
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func baseURLOrDefault(raw, fallback string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return fallback
	}
	return raw
}
