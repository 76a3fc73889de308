package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/token"
)

const (
	ServerStartPort = ":8080"
)

type Config struct {
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mail      MailConfig      `mapstructure:"mail"`
	Incentive IncentiveConfig `mapstructure:"incentive"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type MailConfig struct {
	APIBase string `mapstructure:"api_base"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
}

// IncentiveConfig holds every operator-tunable setting of the review
// incentive flow. Defaults mirror the values seeded at install time.
type IncentiveConfig struct {
	SecretKey          string  `mapstructure:"secret_key"`
	BaseURL            string  `mapstructure:"base_url"`
	EnableCoupon       bool    `mapstructure:"enable_coupon"`
	CouponType         string  `mapstructure:"coupon_type"`
	CouponAmount       float64 `mapstructure:"coupon_amount"`
	CouponValidityDays int     `mapstructure:"coupon_validity_days"`
	EmailDelayMinutes  int     `mapstructure:"email_delay_minutes"`
	LinkText           string  `mapstructure:"link_text"`
	GooglePlaceID      string  `mapstructure:"google_place_id"`
	EmailSubject       string  `mapstructure:"email_subject"`
	EmailContent       string  `mapstructure:"email_content"`
}

const defaultEmailContent = "Thank you for taking the time to share your experience!\n\n" +
	"As a token of our appreciation, here is your exclusive coupon code: <strong>{coupon_code}</strong>\n\n" +
	"Use this code on your next purchase to receive your discount.\n\n" +
	"Best regards,"

func ProvideApplicationConfig() (*Config, error) {

	viper.SetConfigFile("./config.yaml")
	viper.SetConfigType("yaml")

	viper.SetDefault("incentive.enable_coupon", true)
	viper.SetDefault("incentive.coupon_type", "percent")
	viper.SetDefault("incentive.coupon_amount", 15)
	viper.SetDefault("incentive.coupon_validity_days", 30)
	viper.SetDefault("incentive.email_delay_minutes", 60)
	viper.SetDefault("incentive.link_text", "Share your experience on Google")
	viper.SetDefault("incentive.email_subject", "Thank you for your review! Here's your reward")
	viper.SetDefault("incentive.email_content", defaultEmailContent)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func ProvidePostgresConn(appConfig *Config) (driver.PostgresPool, error) {

	conn, err := driver.ConnectSQL(appConfig.Postgres.URL)
	if err != nil {
		return nil, err
	}

	return conn.Pool, nil
}

func ProvideRedisClient(appConfig *Config) (*redis.Client, error) {
	return driver.ConnectRedis(appConfig.Redis.Addr, appConfig.Redis.Password, 0)
}

func ProvideTokenCodec(appConfig *Config) *token.Codec {
	return token.NewCodec(appConfig.Incentive.SecretKey)
}

func NewLogger() *zap.Logger {

	logger, _ := zap.NewProduction()
	return logger
}
