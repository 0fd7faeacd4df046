package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	// TrustedProxies are IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" env-separator:","`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-required:"true"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"rentsetu"`
}

type JWTConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"JWT_SECRET" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"1h"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
}

type OTPConfig struct {
	TTL time.Duration `yaml:"ttl" env:"OTP_TTL" env-default:"10m"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"EMAIL_USER" env-required:"true"`
	Password string `yaml:"password" env:"EMAIL_PASSWORD" env-required:"true"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-required:"true"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-required:"true"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-required:"true"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"rentsetu"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	// PublicURL overrides the endpoint when building file URLs, e.g. a CDN.
	PublicURL string `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"rentsetu-api"`
}

type RateLimitConfig struct {
	AuthLimit    int           `yaml:"auth_limit" env:"RATE_LIMIT_AUTH_MAX" env-default:"10"`
	AuthWindow   time.Duration `yaml:"auth_window" env:"RATE_LIMIT_AUTH_WINDOW" env-default:"15m"`
	UploadLimit  int           `yaml:"upload_limit" env:"RATE_LIMIT_UPLOAD_MAX" env-default:"5"`
	UploadWindow time.Duration `yaml:"upload_window" env:"RATE_LIMIT_UPLOAD_WINDOW" env-default:"15m"`
}

type LoggerConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
}

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	JWT        JWTConfig        `yaml:"jwt"`
	OTP        OTPConfig        `yaml:"otp"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	MinIO      MinIOConfig      `yaml:"minio"`
	Redis      RedisConfig      `yaml:"redis"`
	NATS       NATSConfig       `yaml:"nats"`
	Tracing    TracingConfig    `yaml:"tracing"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// Load reads .env (if present) and then either the YAML file at path or the
// process environment alone when path is empty. Environment variables always
// override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
		return &cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		log.Printf("Warning: config file not found at %s, loading from environment only", path)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from env: %w", err)
		}
	}
	return &cfg, cfg.validate()
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.RateLimit.AuthLimit <= 0 || c.RateLimit.UploadLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}
