package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	defaultAPIFootballBaseURL = "https://v3.football.api-sports.io"
	defaultImportTargets      = "204:2023"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	DBURL                      string
	DBDisablePreparedBinary    bool
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	APIFootballKey             string
	APIFootballBaseURL         string
	APIFootballTimeout         time.Duration
	APIFootballMaxRetries      int
	APIFootballCircuit         resilience.CircuitBreakerConfig
	StatsCacheTTL              time.Duration
	ImportTargets              []usecase.ImportTarget
	ImportFetchConcurrency     int
	ResultWorkers              int
	InternalJobToken           string
	LogLevel                   logging.Level
}

// ProviderConfig is the subset needed to build the API-Football client.
type ProviderConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	apiFootballTimeout, err := time.ParseDuration(getEnv("API_FOOTBALL_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_TIMEOUT: %w", err)
	}
	if apiFootballTimeout <= 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_TIMEOUT must be > 0")
	}
	apiFootballMaxRetries, err := getEnvAsInt("API_FOOTBALL_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_MAX_RETRIES: %w", err)
	}
	if apiFootballMaxRetries < 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_MAX_RETRIES must be >= 0")
	}
	apiFootballCircuitEnabled, err := strconv.ParseBool(getEnv("API_FOOTBALL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_ENABLED: %w", err)
	}
	apiFootballCircuitFailureCount, err := getEnvAsInt("API_FOOTBALL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if apiFootballCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	apiFootballCircuitOpenTimeout, err := time.ParseDuration(getEnv("API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if apiFootballCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	apiFootballCircuitHalfOpenMaxReq, err := getEnvAsInt("API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if apiFootballCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	statsCacheTTL, err := time.ParseDuration(getEnv("STATS_CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CACHE_TTL: %w", err)
	}
	if statsCacheTTL < 0 {
		return Config{}, fmt.Errorf("STATS_CACHE_TTL must be >= 0")
	}

	importTargets, err := ParseImportTargets(getEnv("IMPORT_TARGETS", defaultImportTargets))
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_TARGETS: %w", err)
	}
	importFetchConcurrency, err := getEnvAsInt("IMPORT_FETCH_CONCURRENCY", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_FETCH_CONCURRENCY: %w", err)
	}
	if importFetchConcurrency < 1 {
		return Config{}, fmt.Errorf("IMPORT_FETCH_CONCURRENCY must be >= 1")
	}
	resultWorkers, err := getEnvAsInt("RESULT_WORKERS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse RESULT_WORKERS: %w", err)
	}
	if resultWorkers < 1 {
		return Config{}, fmt.Errorf("RESULT_WORKERS must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "matchfeed-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":4000"),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:    dbDisablePreparedBinary,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		APIFootballKey:             strings.TrimSpace(getEnv("API_FOOTBALL_KEY", "")),
		APIFootballBaseURL:         strings.TrimSpace(getEnv("API_FOOTBALL_BASE_URL", defaultAPIFootballBaseURL)),
		APIFootballTimeout:         apiFootballTimeout,
		APIFootballMaxRetries:      apiFootballMaxRetries,
		APIFootballCircuit: resilience.CircuitBreakerConfig{
			Enabled:          apiFootballCircuitEnabled,
			FailureThreshold: apiFootballCircuitFailureCount,
			OpenTimeout:      apiFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   apiFootballCircuitHalfOpenMaxReq,
		},
		StatsCacheTTL:          statsCacheTTL,
		ImportTargets:          importTargets,
		ImportFetchConcurrency: importFetchConcurrency,
		ResultWorkers:          resultWorkers,
		InternalJobToken:       strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:               logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// ProviderConfig fails with ErrConfigurationMissing when no API key is set.
func (c Config) ProviderConfig() (ProviderConfig, error) {
	if strings.TrimSpace(c.APIFootballKey) == "" {
		return ProviderConfig{}, fmt.Errorf("%w: API_FOOTBALL_KEY is not set", usecase.ErrConfigurationMissing)
	}
	if strings.TrimSpace(c.APIFootballBaseURL) == "" {
		return ProviderConfig{}, fmt.Errorf("%w: API_FOOTBALL_BASE_URL is not set", usecase.ErrConfigurationMissing)
	}
	return ProviderConfig{
		BaseURL:        c.APIFootballBaseURL,
		APIKey:         c.APIFootballKey,
		Timeout:        c.APIFootballTimeout,
		MaxRetries:     c.APIFootballMaxRetries,
		CircuitBreaker: c.APIFootballCircuit,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// ParseImportTargets reads "league:season" pairs separated by commas.
func ParseImportTargets(raw string) ([]usecase.ImportTarget, error) {
	out := make([]usecase.ImportTarget, 0)
	seen := make(map[usecase.ImportTarget]struct{})
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid target %q, expected league:season", item)
		}

		leagueID, err := strconv.ParseInt(strings.TrimSpace(segments[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid league in target %q: %w", item, err)
		}
		season, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid season in target %q: %w", item, err)
		}
		if leagueID <= 0 || season <= 0 {
			return nil, fmt.Errorf("league and season must be > 0 in target %q", item)
		}

		target := usecase.ImportTarget{LeagueID: leagueID, Season: season}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
