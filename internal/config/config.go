package config

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the healthalert application.
// Values are loaded from environment variables; see printUsage() for the full list.
type Config struct {
	DatabaseURL string `json:"database_url"`
	RedisAddr   string `json:"redis_addr,omitempty"`
	HTTPAddr    string `json:"http_addr"`

	PollInterval    time.Duration `json:"-"`
	PollIntervalStr string        `json:"poll_interval"`

	// ToleranceWindow is how far a reminder time may be from now and
	// still count as due.
	ToleranceWindow    time.Duration `json:"-"`
	ToleranceWindowStr string        `json:"tolerance_window"`

	SnoozeDefault    time.Duration `json:"-"`
	SnoozeDefaultStr string        `json:"snooze_default"`

	DBOpTimeout    time.Duration `json:"-"`
	DBOpTimeoutStr string        `json:"db_op_timeout"`

	DBMaxOpenConns       int           `json:"db_max_open_conns"`
	DBMaxIdleConns       int           `json:"db_max_idle_conns"`
	DBConnMaxLifetime    time.Duration `json:"-"`
	DBConnMaxLifetimeStr string        `json:"db_conn_max_lifetime"`
	DBConnMaxIdleTime    time.Duration `json:"-"`
	DBConnMaxIdleTimeStr string        `json:"db_conn_max_idle_time"`

	HTTPShutdownTimeout     time.Duration `json:"-"`
	HTTPShutdownTimeoutStr  string        `json:"http_shutdown_timeout"`
	NotifierDrainTimeout    time.Duration `json:"-"`
	NotifierDrainTimeoutStr string        `json:"notifier_drain_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`

	// CaretakerWebhookURL: empty means caretaker notifications are
	// logged only.
	CaretakerWebhookURL        string        `json:"caretaker_webhook_url"`
	CaretakerWebhookSecret     string        `json:"caretaker_webhook_secret"`
	CaretakerWebhookTimeout    time.Duration `json:"-"`
	CaretakerWebhookTimeoutStr string        `json:"caretaker_webhook_timeout"`

	// CircuitBreakerThreshold: 0 disables the circuit breaker.
	CircuitBreakerThreshold   int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown    time.Duration `json:"-"`
	CircuitBreakerCooldownStr string        `json:"circuit_breaker_cooldown"`

	EventBusBufferSize int `json:"eventbus_buffer_size"`

	HistoryRetention     time.Duration `json:"-"`
	HistoryRetentionStr  string        `json:"history_retention"`
	HistoryPruneSchedule string        `json:"history_prune_schedule"`
	HistoryMemoryLimit   int           `json:"history_memory_limit"`
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is loaded first if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:                os.Getenv("DATABASE_URL"),
		RedisAddr:                  os.Getenv("REDIS_ADDR"),
		HTTPAddr:                   os.Getenv("HTTP_ADDR"),
		PollIntervalStr:            os.Getenv("POLL_INTERVAL"),
		ToleranceWindowStr:         os.Getenv("TOLERANCE_WINDOW"),
		SnoozeDefaultStr:           os.Getenv("SNOOZE_DEFAULT"),
		DBOpTimeoutStr:             os.Getenv("DB_OP_TIMEOUT"),
		DBConnMaxLifetimeStr:       os.Getenv("DB_CONN_MAX_LIFETIME"),
		DBConnMaxIdleTimeStr:       os.Getenv("DB_CONN_MAX_IDLE_TIME"),
		HTTPShutdownTimeoutStr:     os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		NotifierDrainTimeoutStr:    os.Getenv("NOTIFIER_DRAIN_TIMEOUT"),
		MetricsEnabled:             os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:                os.Getenv("METRICS_PATH"),
		CaretakerWebhookURL:        os.Getenv("CARETAKER_WEBHOOK_URL"),
		CaretakerWebhookSecret:     os.Getenv("CARETAKER_WEBHOOK_SECRET"),
		CaretakerWebhookTimeoutStr: os.Getenv("CARETAKER_WEBHOOK_TIMEOUT"),
		CircuitBreakerCooldownStr:  os.Getenv("CIRCUIT_BREAKER_COOLDOWN"),
		HistoryRetentionStr:        os.Getenv("HISTORY_RETENTION"),
		HistoryPruneSchedule:       os.Getenv("HISTORY_PRUNE_SCHEDULE"),
	}

	if bufStr := os.Getenv("EVENTBUS_BUFFER_SIZE"); bufStr != "" {
		if n, err := parseInt(bufStr); err == nil && n > 0 {
			cfg.EventBusBufferSize = n
		} else {
			log.Printf("config: invalid EVENTBUS_BUFFER_SIZE %q (must be a positive integer), using default 100", bufStr)
		}
	}
	if cfg.EventBusBufferSize == 0 {
		cfg.EventBusBufferSize = 100
	}

	if cbThreshStr := os.Getenv("CIRCUIT_BREAKER_THRESHOLD"); cbThreshStr != "" {
		if n, err := parseInt(cbThreshStr); err == nil {
			cfg.CircuitBreakerThreshold = n
		} else {
			log.Printf("config: invalid CIRCUIT_BREAKER_THRESHOLD %q, using default 5", cbThreshStr)
		}
	}
	if cfg.CircuitBreakerThreshold == 0 && os.Getenv("CIRCUIT_BREAKER_THRESHOLD") == "" {
		cfg.CircuitBreakerThreshold = 5
	}

	if limitStr := os.Getenv("HISTORY_MEMORY_LIMIT"); limitStr != "" {
		if n, err := parseInt(limitStr); err == nil && n > 0 {
			cfg.HistoryMemoryLimit = n
		} else {
			log.Printf("config: invalid HISTORY_MEMORY_LIMIT %q (must be a positive integer), using default 500", limitStr)
		}
	}
	if cfg.HistoryMemoryLimit == 0 {
		cfg.HistoryMemoryLimit = 500
	}

	if maxOpenStr := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpenStr != "" {
		if n, err := parseInt(maxOpenStr); err == nil && n > 0 {
			cfg.DBMaxOpenConns = n
		}
	}
	if cfg.DBMaxOpenConns == 0 {
		cfg.DBMaxOpenConns = 25
	}

	if maxIdleStr := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdleStr != "" {
		if n, err := parseInt(maxIdleStr); err == nil && n > 0 {
			cfg.DBMaxIdleConns = n
		}
	}
	if cfg.DBMaxIdleConns == 0 {
		cfg.DBMaxIdleConns = 5
	}

	// Support Railway's PORT variable as fallback for HTTP_ADDR.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8080"
		}
	}
	if cfg.PollIntervalStr == "" {
		cfg.PollIntervalStr = "60s"
	}
	if cfg.ToleranceWindowStr == "" {
		cfg.ToleranceWindowStr = "5m"
	}
	if cfg.SnoozeDefaultStr == "" {
		cfg.SnoozeDefaultStr = "10m"
	}
	if cfg.DBOpTimeoutStr == "" {
		cfg.DBOpTimeoutStr = "5s"
	}
	if cfg.DBConnMaxLifetimeStr == "" {
		cfg.DBConnMaxLifetimeStr = "30m"
	}
	if cfg.DBConnMaxIdleTimeStr == "" {
		cfg.DBConnMaxIdleTimeStr = "5m"
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.NotifierDrainTimeoutStr == "" {
		cfg.NotifierDrainTimeoutStr = "30s"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.CaretakerWebhookTimeoutStr == "" {
		cfg.CaretakerWebhookTimeoutStr = "10s"
	}
	if cfg.CircuitBreakerCooldownStr == "" {
		cfg.CircuitBreakerCooldownStr = "2m"
	}
	if cfg.HistoryRetentionStr == "" {
		cfg.HistoryRetentionStr = "2160h" // 90 days
	}
	if cfg.HistoryPruneSchedule == "" {
		cfg.HistoryPruneSchedule = "0 3 * * *"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.PollIntervalStr); err == nil {
		cfg.PollInterval = d
	}
	if d, err := time.ParseDuration(cfg.ToleranceWindowStr); err == nil {
		cfg.ToleranceWindow = d
	}
	if d, err := time.ParseDuration(cfg.SnoozeDefaultStr); err == nil {
		cfg.SnoozeDefault = d
	}
	if d, err := time.ParseDuration(cfg.DBOpTimeoutStr); err == nil {
		cfg.DBOpTimeout = d
	}
	if d, err := time.ParseDuration(cfg.DBConnMaxLifetimeStr); err == nil {
		cfg.DBConnMaxLifetime = d
	}
	if d, err := time.ParseDuration(cfg.DBConnMaxIdleTimeStr); err == nil {
		cfg.DBConnMaxIdleTime = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.NotifierDrainTimeoutStr); err == nil {
		cfg.NotifierDrainTimeout = d
	}
	if d, err := time.ParseDuration(cfg.CaretakerWebhookTimeoutStr); err == nil {
		cfg.CaretakerWebhookTimeout = d
	}
	if d, err := time.ParseDuration(cfg.CircuitBreakerCooldownStr); err == nil {
		cfg.CircuitBreakerCooldown = d
	}
	if d, err := time.ParseDuration(cfg.HistoryRetentionStr); err == nil {
		cfg.HistoryRetention = d
	}

	return cfg
}

// parseInt parses a string as an integer.
func parseInt(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		DatabaseURL             string `json:"database_url"`
		RedisAddr               string `json:"redis_addr,omitempty"`
		HTTPAddr                string `json:"http_addr"`
		PollInterval            string `json:"poll_interval"`
		ToleranceWindow         string `json:"tolerance_window"`
		SnoozeDefault           string `json:"snooze_default"`
		DBOpTimeout             string `json:"db_op_timeout"`
		DBMaxOpenConns          int    `json:"db_max_open_conns"`
		DBMaxIdleConns          int    `json:"db_max_idle_conns"`
		DBConnMaxLifetime       string `json:"db_conn_max_lifetime"`
		DBConnMaxIdleTime       string `json:"db_conn_max_idle_time"`
		HTTPShutdownTimeout     string `json:"http_shutdown_timeout"`
		NotifierDrainTimeout    string `json:"notifier_drain_timeout"`
		MetricsEnabled          bool   `json:"metrics_enabled"`
		MetricsPath             string `json:"metrics_path"`
		CaretakerWebhookURL     string `json:"caretaker_webhook_url"`
		CaretakerWebhookSecret  string `json:"caretaker_webhook_secret"`
		CaretakerWebhookTimeout string `json:"caretaker_webhook_timeout"`
		CircuitBreakerThreshold int    `json:"circuit_breaker_threshold"`
		CircuitBreakerCooldown  string `json:"circuit_breaker_cooldown"`
		EventBusBufferSize      int    `json:"eventbus_buffer_size"`
		HistoryRetention        string `json:"history_retention"`
		HistoryPruneSchedule    string `json:"history_prune_schedule"`
		HistoryMemoryLimit      int    `json:"history_memory_limit"`
	}{
		DatabaseURL:             maskSecret(c.DatabaseURL),
		RedisAddr:               c.RedisAddr,
		HTTPAddr:                c.HTTPAddr,
		PollInterval:            c.PollIntervalStr,
		ToleranceWindow:         c.ToleranceWindowStr,
		SnoozeDefault:           c.SnoozeDefaultStr,
		DBOpTimeout:             c.DBOpTimeoutStr,
		DBMaxOpenConns:          c.DBMaxOpenConns,
		DBMaxIdleConns:          c.DBMaxIdleConns,
		DBConnMaxLifetime:       c.DBConnMaxLifetimeStr,
		DBConnMaxIdleTime:       c.DBConnMaxIdleTimeStr,
		HTTPShutdownTimeout:     c.HTTPShutdownTimeoutStr,
		NotifierDrainTimeout:    c.NotifierDrainTimeoutStr,
		MetricsEnabled:          c.MetricsEnabled,
		MetricsPath:             c.MetricsPath,
		CaretakerWebhookURL:     c.CaretakerWebhookURL,
		CaretakerWebhookSecret:  maskSecret(c.CaretakerWebhookSecret),
		CaretakerWebhookTimeout: c.CaretakerWebhookTimeoutStr,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerCooldown:  c.CircuitBreakerCooldownStr,
		EventBusBufferSize:      c.EventBusBufferSize,
		HistoryRetention:        c.HistoryRetentionStr,
		HistoryPruneSchedule:    c.HistoryPruneSchedule,
		HistoryMemoryLimit:      c.HistoryMemoryLimit,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value, preserving only the URI scheme if present.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if len(s) >= len(scheme) && s[:len(scheme)] == scheme {
			return scheme + "***"
		}
	}
	return "***"
}
