package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://v3.football.api-sports.io"

	headerAPIKey  = "x-apisports-key"
	headerAPIHost = "x-apisports-host"

	maxResponseBytes = 6 << 20
)

var errProviderTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads fixtures and fixture statistics from API-Football v3.
// Identical concurrent requests share one provider call, which runs until the
// HTTP client timeout even when the caller that started it goes away.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	required := struct {
		BaseURL string `validate:"required,url"`
		APIKey  string `validate:"required"`
	}{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}
	if err := validator.New().Struct(required); err != nil {
		return nil, fmt.Errorf("%w: api-football client: %v", usecase.ErrConfigurationMissing, err)
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: api-football base url: %v", usecase.ErrConfigurationMissing, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		host:       parsed.Host,
		apiKey:     cfg.APIKey,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.Named("apifootball"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (c *Client) FetchFixtures(ctx context.Context, leagueID int64, season int) ([]usecase.ExternalFixture, error) {
	if leagueID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: league and season must be greater than zero", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("league", strconv.FormatInt(leagueID, 10))
	query.Set("season", strconv.Itoa(season))

	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d season=%d: %w", leagueID, season, err)
	}
	if err := providerErrors(envelope.Errors); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d season=%d: %w", leagueID, season, err)
	}

	out := make([]usecase.ExternalFixture, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		out = append(out, mapFixture(item, season))
	}
	return out, nil
}

func (c *Client) FetchStatistics(ctx context.Context, providerFixtureID int64) ([]usecase.TeamStatistics, error) {
	if providerFixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("fixture", strconv.FormatInt(providerFixtureID, 10))

	var envelope statisticsEnvelope
	if err := c.doJSON(ctx, "/fixtures/statistics", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch statistics fixture=%d: %w", providerFixtureID, err)
	}
	if err := providerErrors(envelope.Errors); err != nil {
		return nil, fmt.Errorf("fetch statistics fixture=%d: %w", providerFixtureID, err)
	}
	if envelope.Response == nil {
		return []usecase.TeamStatistics{}, nil
	}
	return envelope.Response, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, _, err := c.flight.Do(ctx, fullURL, func(shared context.Context) ([]byte, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(shared, fullURL)
			return reqErr
		}, classifyProviderError)
		return body, execErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && crerr.Is(err, ctxErr) {
			return ctxErr
		}
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
		}
		return fmt.Errorf("%w: %w", usecase.ErrUpstreamFailure, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode provider payload: %v", usecase.ErrUpstreamFailure, err)
	}
	return nil
}

// classifyProviderError trips the breaker only for transport failures, 429 and
// 5xx. Other statuses mean the provider answered, and a cancelled context means
// the caller left.
func classifyProviderError(err error) resilience.Outcome {
	switch {
	case crerr.Is(err, context.Canceled), crerr.Is(err, context.DeadlineExceeded):
		return resilience.OutcomeNeutral
	case crerr.Is(err, errProviderTransient):
		return resilience.OutcomeFailure
	default:
		return resilience.OutcomeSuccess
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(headerAPIKey, c.apiKey)
		req.Header.Set(headerAPIHost, c.host)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = fmt.Errorf("%w: send request: %s", errProviderTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errProviderTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, sanitizeSensitiveText(abbreviateBody(raw), c.apiKey))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapFixture(item fixtureItem, fallbackSeason int) usecase.ExternalFixture {
	season := item.League.Season
	if season <= 0 {
		season = fallbackSeason
	}
	return usecase.ExternalFixture{
		FixtureID:   item.Fixture.ID,
		MatchDate:   parseProviderDateTime(item.Fixture.Date),
		Venue:       derefString(item.Fixture.Venue.Name),
		Referee:     derefString(item.Fixture.Referee),
		Competition: item.League.Name,
		Season:      season,
		Round:       item.League.Round,
		Status:      item.Fixture.Status.Short,
		HomeTeam:    usecase.ExternalTeam{ProviderID: item.Teams.Home.ID, Name: item.Teams.Home.Name},
		AwayTeam:    usecase.ExternalTeam{ProviderID: item.Teams.Away.ID, Name: item.Teams.Away.Name},
	}
}

// providerErrors reports the provider's errors field, which is an empty array
// on success and an object keyed by error kind otherwise.
func providerErrors(raw json.RawMessage) error {
	text := strings.TrimSpace(string(raw))
	switch text {
	case "", "null", "[]", "{}":
		return nil
	}
	return fmt.Errorf("%w: provider errors=%s", usecase.ErrUpstreamFailure, abbreviateBody([]byte(text)))
}

// parseProviderDateTime returns the zero time for unparseable input so the
// resolver rejects the record.
func parseProviderDateTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" || apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, apiKey, "REDACTED")
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
