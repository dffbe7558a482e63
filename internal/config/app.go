package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string `mapstructure:"rate_limit"`
	// AllowedOrigins feeds CORS; empty means any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func (c HTTPClient) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type NbpAPI struct {
	BaseURL    string `mapstructure:"base_url"`
	WindowDays int    `mapstructure:"window_days"`
}

type Scheduler struct {
	JobDurationSec int `mapstructure:"job_duration_sec"`
}

func (s Scheduler) Interval() time.Duration {
	return time.Duration(s.JobDurationSec) * time.Second
}

type Cache struct {
	MaxItems   int64 `mapstructure:"max_items"`
	TTLSeconds int   `mapstructure:"ttl_seconds"`
}

func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	NbpAPI     NbpAPI     `mapstructure:"nbp_api"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Cache      Cache      `mapstructure:"cache"`
	Logging    Logging    `mapstructure:"logging"`
}

// Init reads config.yaml (or $CONFIG_PATH) with env overrides. A missing .env is not an error.
func Init() (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.rate_limit", "300-M")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("nbp_api.base_url", "https://api.nbp.pl/api")
	v.SetDefault("nbp_api.window_days", 14)
	v.SetDefault("scheduler.job_duration_sec", 10)
	v.SetDefault("cache.max_items", 10_000)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("logging.level", "info")
}

func bindEnv(v *viper.Viper) {
	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("http_server.rate_limit", "HTTP_RATE_LIMIT")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	_ = v.BindEnv("nbp_api.base_url", "NBP_API_BASE_URL")
	_ = v.BindEnv("scheduler.job_duration_sec", "SCHEDULER_JOB_DURATION_SEC")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}
