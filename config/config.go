package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"flashxship-api/database"
	"flashxship-api/services/email"
)

type Config struct {
	Database database.DatabaseConfig
	Redis    RedisConfig
	SMTP     email.SMTPConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Session  SessionConfig
	Server   ServerConfig
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type SessionConfig struct {
	Secret string
	Domain string
	MaxAge int
}

type ServerConfig struct {
	Port        string
	FrontendURL string
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	workerConcurrency := 2
	if raw := os.Getenv("WORKER_CONCURRENCY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workerConcurrency = n
		}
	}

	sessionMaxAge := 86400 * 30
	if raw := os.Getenv("SESSION_MAX_AGE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			sessionMaxAge = n
		}
	}

	cfg := &Config{
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			URL:               os.Getenv("REDIS_URL"),
			WorkerConcurrency: workerConcurrency,
		},
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: "flashxship",
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: sessionMaxAge,
		},
		Server: ServerConfig{
			Port:        os.Getenv("SERVER_PORT"),
			FrontendURL: os.Getenv("FRONTEND_URL"),
		},
	}

	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
		log.Printf("Warning: REDIS_URL not set, using default: %s", cfg.Redis.URL)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:3000"
	}

	return cfg
}
