package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// inference service (pose estimation / rep counting)
	InferenceURL string `toml:"inference_url"`

	// capture loop
	CapturePeriod     Duration `toml:"capture_period"`
	StopOnViewerLeave bool     `toml:"stop_on_viewer_leave"`

	// camera
	CameraDevice  string `toml:"camera_device"` // v4l2 | pattern
	CameraPath    string `toml:"camera_path"`
	CameraWidth   int    `toml:"camera_width"`
	CameraHeight  int    `toml:"camera_height"`
	JPEGQuality   int    `toml:"jpeg_quality"`
	MaxFrameWidth int    `toml:"max_frame_width"`

	// latest outcome store + rate limiting
	RedisEnabled                bool     `toml:"redis_enabled"`
	RedisHost                   string   `toml:"redis_host"`
	RedisPort                   string   `toml:"redis_port"`
	OutcomeTTL                  Duration `toml:"outcome_ttl"`
	ResetRateLimitAllowedPerMin int      `toml:"reset_rate_limit_allowed_per_min"`

	// session history
	PostgresEnabled bool   `toml:"postgres_enabled"`
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresUser    string `toml:"postgres_user"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

// Duration lets TOML values like "1s" or "500ms" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration [%s]: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the config section for env,
// with defaults applied to everything left unset.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CapturePeriod.Duration == 0 {
		c.CapturePeriod.Duration = time.Second
	}
	if c.CameraDevice == "" {
		c.CameraDevice = "pattern"
	}
	if c.CameraPath == "" {
		c.CameraPath = "/dev/video0"
	}
	if c.CameraWidth == 0 {
		c.CameraWidth = 640
	}
	if c.CameraHeight == 0 {
		c.CameraHeight = 480
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 80
	}
	if c.OutcomeTTL.Duration == 0 {
		c.OutcomeTTL.Duration = 5 * time.Minute
	}
	if c.ResetRateLimitAllowedPerMin == 0 {
		c.ResetRateLimitAllowedPerMin = 30
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "9101"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.InferenceURL == "" {
		errs = append(errs, errors.New("inference_url not set"))
	}
	if c.CapturePeriod.Duration < 0 {
		errs = append(errs, errors.New("capture_period must be positive"))
	}
	switch c.CameraDevice {
	case "v4l2", "pattern":
	default:
		errs = append(errs, fmt.Errorf("unknown camera_device: %s", c.CameraDevice))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality out of range [1, 100]: %d", c.JPEGQuality))
	}
	if c.RedisEnabled && (c.RedisHost == "" || c.RedisPort == "") {
		errs = append(errs, errors.New("redis enabled, but redis_host / redis_port not set"))
	}
	if c.PostgresEnabled && (c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "") {
		errs = append(errs, errors.New("postgres enabled, but postgres_host / postgres_port / postgres_db_name not set"))
	}
	return errors.Join(errs...)
}
