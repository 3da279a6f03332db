package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MomoOperatorConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	WebhookKey string `yaml:"webhook_key"` // shared secret checked on callbacks
	Sandbox    bool   `yaml:"sandbox"`
}

type PaymentConfig struct {
	MTN  MomoOperatorConfig `yaml:"mtn"`
	Moov MomoOperatorConfig `yaml:"moov"`

	ExpiryTTL              time.Duration `yaml:"expiry_ttl"`              // pending payment lifetime
	CommissionRate         string        `yaml:"commission_rate"`         // default ticketing rate, percent
	SubscriptionCommission string        `yaml:"subscription_commission"` // fixed rate on subscription payments, percent
}

type SubscriptionConfig struct {
	FreeEventsPerMonth int `yaml:"free_events_per_month"`
}

type SchedulerConfig struct {
	ExpiryInterval     time.Duration `yaml:"expiry_interval"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
	EscalationInterval time.Duration `yaml:"escalation_interval"`
	ReconcileInterval  time.Duration `yaml:"reconcile_interval"`
}

type SecurityConfig struct {
	EncryptionKey string        `yaml:"encryption_key"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTTTL        time.Duration `yaml:"jwt_ttl"`
	AdminAPIKey   string        `yaml:"admin_api_key"`
}

type Config struct {
	API          APIConfig          `yaml:"api"`
	Admin        AdminConfig        `yaml:"admin"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Payment      PaymentConfig      `yaml:"payment"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Security     SecurityConfig     `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Payment.ExpiryTTL <= 0 {
		cfg.Payment.ExpiryTTL = 30 * time.Minute
	}
	if cfg.Payment.CommissionRate == "" {
		cfg.Payment.CommissionRate = "10"
	}
	if cfg.Payment.SubscriptionCommission == "" {
		cfg.Payment.SubscriptionCommission = "3"
	}
	if cfg.Subscription.FreeEventsPerMonth <= 0 {
		cfg.Subscription.FreeEventsPerMonth = 2
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.SweepInterval <= 0 {
		cfg.Scheduler.SweepInterval = 5 * time.Minute
	}
	if cfg.Scheduler.EscalationInterval <= 0 {
		cfg.Scheduler.EscalationInterval = 5 * time.Minute
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 15 * time.Minute
	}
	if cfg.Security.JWTTTL <= 0 {
		cfg.Security.JWTTTL = 24 * time.Hour
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Security.JWTSecret == "" {
		return nil, errors.New("security.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}
