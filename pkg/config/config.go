package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

var (
	ErrMissingPaymentCredentials = errors.New("no payment credentials configured; set PAYMENT_STRIPE_KEY or PAYMENT_BANK_TRANSFER_URL, or enable OFFLINE mode")
	ErrMissingDatabase           = errors.New("no database host configured; set DATABASE_HOST, or enable OFFLINE mode")
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`

	// Offline selects the disconnected demo mode: sqlite storage and the
	// no-op payment provider. It must be set explicitly; missing payment
	// credentials without it are a startup error.
	Offline bool `mapstructure:"OFFLINE"`

	TLS struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"OTEL"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Path           string `mapstructure:"PATH"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Payment struct {
		StripeKey        string `mapstructure:"STRIPE_KEY"`
		BankTransferURL  string `mapstructure:"BANK_TRANSFER_URL"`
		TransferCurrency string `mapstructure:"TRANSFER_CURRENCY"`
	} `mapstructure:"PAYMENT"`
	Automation struct {
		TickInterval time.Duration `mapstructure:"TICK_INTERVAL"`
		EmailURL     string        `mapstructure:"EMAIL_URL"`
		ContentURL   string        `mapstructure:"CONTENT_URL"`
		AdsURL       string        `mapstructure:"ADS_URL"`
		SupplierURL  string        `mapstructure:"SUPPLIER_URL"`
	} `mapstructure:"AUTOMATION"`
	Payout struct {
		RunInterval time.Duration `mapstructure:"RUN_INTERVAL"`
	} `mapstructure:"PAYOUT"`
	Simulator struct {
		Enabled  bool          `mapstructure:"ENABLED"`
		Interval time.Duration `mapstructure:"INTERVAL"`
	} `mapstructure:"SIMULATOR"`
	Reports struct {
		Bucket string `mapstructure:"BUCKET"`
	} `mapstructure:"REPORTS"`
	Minio struct {
		Endpoint  string `mapstructure:"ENDPOINT"`
		AccessKey string `mapstructure:"ACCESS_KEY"`
		SecretKey string `mapstructure:"SECRET_KEY"`
		Secure    bool   `mapstructure:"SECURE"`
	} `mapstructure:"MINIO"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func LoadConfig(p Params) *Config {

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		zap.L().Error("failed to read config file", zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	if p.Vault != nil {
		// START - Vault
		client := p.Vault
		ctx := context.Background()

		zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
		secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
		if err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
		zap.L().Info("Success Get Secret")

		get := func(key string) string {
			if val, ok := secret.Data.Data[key].(string); ok {
				return val
			}
			return ""
		}

		cfg.Database.User = get("postgres_user")
		cfg.Database.Password = get("postgres_password")
		cfg.Redis.Password = get("redis_password")
		cfg.Payment.StripeKey = get("stripe_key")
		cfg.Flagsmith.ApiKey = get("flagsmith_api_key")
		// END - Vault
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		zap.L().Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Automation.TickInterval <= 0 {
		cfg.Automation.TickInterval = time.Minute
	}
	if cfg.Payout.RunInterval <= 0 {
		cfg.Payout.RunInterval = time.Minute
	}
	if cfg.Simulator.Interval <= 0 {
		cfg.Simulator.Interval = 5 * time.Minute
	}
	if cfg.Payment.TransferCurrency == "" {
		cfg.Payment.TransferCurrency = "usd"
	}
	if cfg.Reports.Bucket == "" {
		cfg.Reports.Bucket = "earnings-reports"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "dreamseller.db"
	}
}

// Validate applies the fail-fast credential policy: a connected deployment
// must carry a database host and at least one payment destination. Only the
// explicit OFFLINE flag relaxes it; credentials are never silently mocked.
func Validate(cfg *Config) error {
	if cfg.Offline {
		return nil
	}
	if cfg.Database.Host == "" {
		return ErrMissingDatabase
	}
	if cfg.Payment.StripeKey == "" && cfg.Payment.BankTransferURL == "" {
		return ErrMissingPaymentCredentials
	}
	return nil
}
