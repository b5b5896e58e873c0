package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	MySQLDSN       string `mapstructure:"MYSQL_DSN"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	VNPTmnCode     string `mapstructure:"VNP_TMN_CODE"`
	VNPHashSecret  string `mapstructure:"VNP_HASH_SECRET"`
	VNPPayURL      string `mapstructure:"VNP_PAY_URL"`
	VNPReturnURL   string `mapstructure:"VNP_RETURN_URL"`
}

// Load reads configuration from an optional app.env file, with
// environment variables taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("HTTP_PORT", ":8080")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/aims?parseTime=true")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MIGRATIONS_PATH", "./migrations")
	v.SetDefault("VNP_TMN_CODE", "")
	v.SetDefault("VNP_HASH_SECRET", "")
	v.SetDefault("VNP_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("VNP_RETURN_URL", "http://localhost:8080/api/payment/return")

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
