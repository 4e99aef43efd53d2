package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIURL is the production Sagipero backend.
const DefaultAPIURL = "https://sagipero-backend-production.up.railway.app/api"

type Config struct {
	ServiceName       string
	APIURL            string
	WSURL             string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	CORSOrigins       []string
	RequestTimeout    time.Duration
	RetryDelay        time.Duration
	MaxRetries        int
	HealthInterval    time.Duration
	SessionTTL        time.Duration
	DevMode           bool

	// Report archive. Archiving is disabled when ReportBucket is empty.
	ReportBucket string
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
}

func Load() (*Config, error) {
	origins := getEnv("CORS_ORIGINS", "http://localhost:5173")
	var corsList []string
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			corsList = append(corsList, trimmed)
		}
	}

	cfg := &Config{
		ServiceName:       getEnv("SERVICE_NAME", "sagipero-admin"),
		APIURL:            strings.TrimRight(getEnv("SAGIPERO_API_URL", DefaultAPIURL), "/"),
		WSURL:             getEnv("SAGIPERO_WS_URL", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":3001"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       corsList,
		DevMode:           getEnv("DEV_MODE", "") == "true",
		ReportBucket:      getEnv("REPORT_ARCHIVE_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getDuration("RETRY_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = getDuration("HEALTH_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, "SAGIPERO_API_URL")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.ReportBucket != "" {
		if c.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if c.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("SAGIPERO_API_URL: %w", err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative")
	}
	return nil
}

// SocketURL returns the websocket base for realtime notifications. An
// explicit SAGIPERO_WS_URL wins; otherwise the API URL without its /api
// suffix is used.
func (c *Config) SocketURL() string {
	return c.SocketURLFor(c.APIURL)
}

// SocketURLFor is SocketURL for an API base other than the configured one,
// such as a base picked in the settings file.
func (c *Config) SocketURLFor(apiBase string) string {
	if c.WSURL != "" {
		return strings.TrimRight(c.WSURL, "/")
	}
	return SocketBase(apiBase)
}

// SocketBase strips a trailing /api from an API base URL.
func SocketBase(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(u, "/api")
}

// WSScheme returns u with the scheme changed to ws(s).
func WSScheme(u string) string {
	if strings.HasPrefix(u, "https://") {
		return "wss://" + u[len("https://"):]
	}
	if strings.HasPrefix(u, "http://") {
		return "ws://" + u[len("http://"):]
	}
	return u
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
