package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/yashu1412/Flight-Booking/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Surge    SurgeConfig    `yaml:"surge"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address         string   `yaml:"address"`
	SwaggerDir      string   `yaml:"swagger_dir"`
	ShutdownSeconds int      `yaml:"shutdown_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	SSLMode       string `yaml:"ssl_mode"`
	MaxConns      int    `yaml:"max_conns"`
	LockTimeoutMs int    `yaml:"lock_timeout_ms"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
	DefaultPageSize int `yaml:"default_page_size"`
}

type SurgeConfig struct {
	AttemptThreshold int     `yaml:"attempt_threshold"`
	WindowMinutes    int     `yaml:"window_minutes"`
	ResetMinutes     int     `yaml:"reset_minutes"`
	Percentage       float64 `yaml:"percentage"`
}

func (s SurgeConfig) Window() time.Duration      { return time.Duration(s.WindowMinutes) * time.Minute }
func (s SurgeConfig) ResetWindow() time.Duration { return time.Duration(s.ResetMinutes) * time.Minute }

type WalletConfig struct {
	// DefaultBalance is a decimal amount, e.g. "50000.00".
	DefaultBalance string `yaml:"default_balance"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

type WorkerConfig struct {
	CleanupSweepMinutes int `yaml:"cleanup_sweep_minutes"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			SwaggerDir:      "docs",
			ShutdownSeconds: 10,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			SSLMode:       "disable",
			MaxConns:      10,
			LockTimeoutMs: 5000,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			BookingEventsTopic: "booking-events",
			NotificationsTopic: "booking-notifications",
			GroupID:            "flight-booking-worker",
		},
		Booking: BookingConfig{
			FlightsCacheTTL: 60,
			DefaultPageSize: 20,
		},
		Surge: SurgeConfig{
			AttemptThreshold: 3,
			WindowMinutes:    5,
			ResetMinutes:     10,
			Percentage:       10,
		},
		Wallet: WalletConfig{DefaultBalance: "50000.00"},
		Auth:   AuthConfig{Issuer: "flight-booking"},
		Worker: WorkerConfig{CleanupSweepMinutes: 5},
	}
}

// LoadConfig reads the YAML file at path on top of Default. ${VAR}
// references are expanded from the environment first.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Surge.AttemptThreshold <= 0 {
		errs = append(errs, errors.New("surge.attempt_threshold must be positive"))
	}
	if c.Surge.WindowMinutes <= 0 {
		errs = append(errs, errors.New("surge.window_minutes must be positive"))
	}
	if c.Surge.ResetMinutes <= 0 {
		errs = append(errs, errors.New("surge.reset_minutes must be positive"))
	}
	if c.Surge.Percentage < 0 {
		errs = append(errs, errors.New("surge.percentage must not be negative"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Worker.CleanupSweepMinutes <= 0 {
		errs = append(errs, errors.New("worker.cleanup_sweep_minutes must be positive"))
	}
	if _, err := domain.ParseMoney(c.Wallet.DefaultBalance); err != nil {
		errs = append(errs, fmt.Errorf("wallet.default_balance: %w", err))
	}
	if c.Booking.DefaultPageSize <= 0 {
		errs = append(errs, errors.New("booking.default_page_size must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
