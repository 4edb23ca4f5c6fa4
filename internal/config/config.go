package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	authConfig "github.com/iurnickita/shopledger/internal/auth/config"
	handlerConfig "github.com/iurnickita/shopledger/internal/handler/config"
	loggerConfig "github.com/iurnickita/shopledger/internal/logger/config"
	serviceConfig "github.com/iurnickita/shopledger/internal/service/config"
	storeConfig "github.com/iurnickita/shopledger/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Service serviceConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
	Auth    authConfig.Config
}

func defaultConfig() Config {
	return Config{
		Handler: handlerConfig.Config{ServerAddr: "localhost:8080"},
		Service: serviceConfig.Config{MinLeadDays: 7, TimeZone: "UTC"},
		Logger:  loggerConfig.Config{LogLevel: "info"},
		Auth:    authConfig.Config{SecretKey: "shopledger-dev-secret", TokenTTL: 24 * time.Hour},
	}
}

// GetConfig returns defaults overridden by environment variables.
// Flags are not parsed, so it is safe to call from tests.
func GetConfig() Config {
	cfg := defaultConfig()
	// ошибки env на этом пути игнорируются, остаются значения по умолчанию
	_ = applyEnv(&cfg)
	return cfg
}

// Load parses command line flags, then lets environment variables win.
func Load(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("shopledger", flag.ContinueOnError)
	fs.StringVar(&cfg.Handler.ServerAddr, "a", cfg.Handler.ServerAddr, "address and port to run server")
	fs.StringVar(&cfg.Store.DBDsn, "d", cfg.Store.DBDsn, "database connection string")
	fs.StringVar(&cfg.Logger.LogLevel, "l", cfg.Logger.LogLevel, "log level")
	fs.StringVar(&cfg.Auth.SecretKey, "k", cfg.Auth.SecretKey, "token signing key")
	fs.StringVar(&cfg.Service.SMSAddr, "s", cfg.Service.SMSAddr, "sms gateway address")
	fs.IntVar(&cfg.Service.MinLeadDays, "lead", cfg.Service.MinLeadDays, "minimum credit term in days")
	fs.DurationVar(&cfg.Service.RemindInterval, "r", cfg.Service.RemindInterval, "overdue reminder interval, 0 disables")
	fs.StringVar(&cfg.Service.TimeZone, "tz", cfg.Service.TimeZone, "time zone for calendar day rules")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RUN_ADDRESS"); v != "" {
		cfg.Handler.ServerAddr = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		cfg.Store.DBDsn = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.LogLevel = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := os.Getenv("SMS_ADDRESS"); v != "" {
		cfg.Service.SMSAddr = v
	}
	if v := os.Getenv("SMS_TOKEN"); v != "" {
		cfg.Service.SMSToken = v
	}
	if v := os.Getenv("TIME_ZONE"); v != "" {
		cfg.Service.TimeZone = v
	}
	if v := os.Getenv("MIN_LEAD_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MIN_LEAD_DAYS: %w", err)
		}
		cfg.Service.MinLeadDays = days
	}
	if v := os.Getenv("REMIND_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REMIND_INTERVAL: %w", err)
		}
		cfg.Service.RemindInterval = d
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = d
	}
	return nil
}
