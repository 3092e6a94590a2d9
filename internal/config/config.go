package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Site      SiteConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	Review    ReviewConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SiteConfig struct {
	// BaseURL is the absolute public URL of the site. Moderation links and
	// post-moderation redirects are always built from it, never from the
	// incoming Host header.
	BaseURL      string
	CompanyName  string
	CompanyEmail string
}

type AdminConfig struct {
	JWTSecret string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type ReviewConfig struct {
	// Cooldown is the advisory minimum interval between submissions from the
	// same device, mirrored to the submission cache.
	Cooldown time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("BASE_URL", "http://localhost:3000")
	viper.SetDefault("COMPANY_NAME", "CMD Breizh")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 1.0)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("REVIEW_COOLDOWN_MINUTES", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnvOrPanic("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM_EMAIL"),
		},
		Site: SiteConfig{
			BaseURL:      viper.GetString("BASE_URL"),
			CompanyName:  viper.GetString("COMPANY_NAME"),
			CompanyEmail: viper.GetString("COMPANY_EMAIL"),
		},
		Admin: AdminConfig{
			JWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Review: ReviewConfig{
			Cooldown: time.Duration(viper.GetInt("REVIEW_COOLDOWN_MINUTES")) * time.Minute,
		},
	}

	// Basic validation
	if cfg.Site.CompanyEmail == "" {
		log.Println("WARNING: COMPANY_EMAIL is not set; admin notifications have no recipient")
	}
	if cfg.Admin.JWTSecret == "" {
		log.Println("WARNING: ADMIN_JWT_SECRET is not set; admin endpoints are disabled")
	}

	return cfg, nil
}

func getEnvOrPanic(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("environment variable %s is required", key)
	}
	return v
}
