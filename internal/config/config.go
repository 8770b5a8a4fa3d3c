// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Zoom                    `yaml:"zoom"`
	Booking                 `yaml:"booking"`
	Payment                 `yaml:"payment"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для проверки jwt-токенов, выпущенных провайдером авторизации
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP настройки почтового сервера
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Zoom настройки интеграции с сервисом видеовстреч
type Zoom struct {
	ZoomAccountID    string        `yaml:"account_id" env:"ZOOM_ACCOUNT_ID"`
	ZoomClientID     string        `yaml:"client_id" env:"ZOOM_CLIENT_ID"`
	ZoomClientSecret string        `yaml:"client_secret" env:"ZOOM_CLIENT_SECRET"`
	ZoomAPIURL       string        `yaml:"api_url" env-default:"https://api.zoom.us/v2"`
	ZoomTokenURL     string        `yaml:"token_url" env-default:"https://zoom.us/oauth/token"`
	ZoomTimeout      time.Duration `yaml:"timeout" env-default:"10s"`
}

// Booking настройки записи на встречи
type Booking struct {
	SlotsTimeout     time.Duration `yaml:"slots_timeout" env-default:"5s"`
	MeetingDuration  time.Duration `yaml:"meeting_duration" env-default:"30m"`
	MeetingTimeout   time.Duration `yaml:"meeting_timeout" env-default:"3s"`
	Location         string        `yaml:"location" env-default:"UTC"`
	WorkingHoursTTL  time.Duration `yaml:"working_hours_ttl" env-default:"10m"`
	BookingRateLimit float64       `yaml:"rate_limit" env-default:"1"`
	BookingRateBurst int           `yaml:"rate_burst" env-default:"3"`
}

// Payment настройки обработки вебхуков оплаты
type Payment struct {
	WebhookSecret string        `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
	PlanPeriod    time.Duration `yaml:"plan_period" env-default:"720h"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, при ошибке завершает процесс
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла path и переменных окружения
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// TimeLocation возвращает часовой пояс, в котором трактуются даты записи
func (b Booking) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(b.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"RabbitMQ:\n"+
			"  MaxRetries: %d\n"+
			"Booking:\n"+
			"  SlotsTimeout: %s\n"+
			"  Location: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.RabbitMQMaxRetries,
		c.SlotsTimeout,
		c.Location,
	)
}
