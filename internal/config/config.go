package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	Port             int           `mapstructure:"port"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	ReconnectDelay   time.Duration `mapstructure:"reconnect_delay"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	WebhookPath      string        `mapstructure:"webhook_path"`
	WebhookRateLimit int           `mapstructure:"webhook_rate_limit"`
	WebhookRateSpan  time.Duration `mapstructure:"webhook_rate_span"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("reconnect_delay", "3s")
	v.SetDefault("read_limit", 1048576)
	v.SetDefault("handshake_timeout", "10s")
	v.SetDefault("webhook_path", "/webhook")
	v.SetDefault("webhook_rate_limit", 30)
	v.SetDefault("webhook_rate_span", "1m")

	// Secrets come from the environment, not the file.
	v.SetEnvPrefix("RTMS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Webhook: %s\n", cfg.Mode, cfg.Port, cfg.WebhookPath)
	return &cfg, nil
}
