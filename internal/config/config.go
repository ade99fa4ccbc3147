// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	CanvaOAuth              `yaml:"canva_oauth"`
	RabbitMQ                `yaml:"rabbitmq"`
	StripeWebhookSecret     string `yaml:"stripe_webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// CanvaOAuth структура для настройки OAuth-подключения к Canva
type CanvaOAuth struct {
	ClientID     string        `yaml:"client_id" env:"CANVA_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"CANVA_CLIENT_SECRET"`
	RedirectURI  string        `yaml:"redirect_uri" env:"CANVA_REDIRECT_URI"`
	Scopes       []string      `yaml:"scopes"`
	Timeout      time.Duration `yaml:"timeout"`
	VerifierTTL  time.Duration `yaml:"verifier_ttl"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	URL          string `yaml:"url" env:"RABBITMQ_URL"`
	EmailsQueue  string `yaml:"emails_queue"`
	ExchangeName string `yaml:"exchange_name"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, прочитанный
// из файла по пути CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if cfg.CanvaOAuth.Timeout == 0 {
		cfg.CanvaOAuth.Timeout = 10 * time.Second
	}
	if cfg.CanvaOAuth.VerifierTTL == 0 {
		cfg.CanvaOAuth.VerifierTTL = 10 * time.Minute
	}
	return &cfg
}
