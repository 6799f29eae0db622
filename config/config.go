package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string          `yaml:"environment"`
	Name        string          `yaml:"name"`
	Version     string          `yaml:"version"`
	HTTP        HTTPConfig      `yaml:"http"`
	Postgres    PostgresConfig  `yaml:"postgres"`
	JWT         JWTConfig       `yaml:"jwt"`
	S3          S3Config        `yaml:"s3"`
	Typesense   TypesenseConfig `yaml:"typesense"`
	Redis       RedisConfig     `yaml:"redis"`
	Mirror      MirrorConfig    `yaml:"mirror"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderMB     int           `yaml:"max_header_mb"`
}

type PostgresConfig struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	DBName             string        `yaml:"db_name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MigrationsDir      string        `yaml:"migrations_dir"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	MaxLifetime        time.Duration `yaml:"max_lifetime"`
}

type JWTConfig struct {
	SigningKey      string        `yaml:"signing_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	UseSSL          bool   `yaml:"use_ssl"`
}

type TypesenseConfig struct {
	URL               string        `yaml:"url"`
	APIKey            string        `yaml:"api_key"`
	Collection        string        `yaml:"collection"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Addr возвращает адрес Redis или пустую строку, если Redis не настроен.
func (c RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

type MirrorConfig struct {
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	BaseBackoff  time.Duration `yaml:"base_backoff"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`
}

func NewConfig() (*Config, error) {
	httpReadTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	httpWriteTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	httpShutdownTimeout, err := time.ParseDuration(getEnv("HTTP_SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return nil, err
	}

	postgresMaxLifetime, err := time.ParseDuration(getEnv("POSTGRES_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, err
	}

	jwtAccessTokenTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, err
	}

	jwtRefreshTokenTTL, err := time.ParseDuration(getEnv("JWT_REFRESH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	typesenseTimeout, err := time.ParseDuration(getEnv("TYPESENSE_CONNECTION_TIMEOUT", "5s"))
	if err != nil {
		return nil, err
	}

	mirrorPollInterval, err := time.ParseDuration(getEnv("MIRROR_POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, err
	}

	mirrorBaseBackoff, err := time.ParseDuration(getEnv("MIRROR_BASE_BACKOFF", "2s"))
	if err != nil {
		return nil, err
	}

	mirrorMaxBackoff, err := time.ParseDuration(getEnv("MIRROR_MAX_BACKOFF", "5m"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Name:        getEnv("APP_NAME", "twocare"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		HTTP: HTTPConfig{
			Port:            getEnv("HTTP_PORT", "8080"),
			ReadTimeout:     httpReadTimeout,
			WriteTimeout:    httpWriteTimeout,
			ShutdownTimeout: httpShutdownTimeout,
			MaxHeaderMB:     getEnvAsInt("HTTP_MAX_HEADER_MB", 1),
		},
		Postgres: PostgresConfig{
			Host:               getEnv("POSTGRES_HOST", "localhost"),
			Port:               getEnv("POSTGRES_PORT", "5432"),
			Username:           getEnv("POSTGRES_USER", "postgres"),
			Password:           getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:             getEnv("POSTGRES_DB", "twocare"),
			SSLMode:            getEnv("POSTGRES_SSL_MODE", "disable"),
			MigrationsDir:      getEnv("POSTGRES_MIGRATIONS_DIR", "./migrations"),
			MaxConnections:     getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("POSTGRES_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:        postgresMaxLifetime,
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "your_secret_key"),
			AccessTokenTTL:  jwtAccessTokenTTL,
			RefreshTokenTTL: jwtRefreshTokenTTL,
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET", "twocare"),
			UseSSL:          getEnv("S3_USE_SSL", "true") == "true",
		},
		Typesense: TypesenseConfig{
			URL:               getEnv("TYPESENSE_URL", ""),
			APIKey:            getEnv("TYPESENSE_API_KEY", ""),
			Collection:        getEnv("TYPESENSE_COLLECTION", "caregivers"),
			ConnectionTimeout: typesenseTimeout,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_MIRROR_CHANNEL", "twocare:mirror"),
		},
		Mirror: MirrorConfig{
			Workers:      getEnvAsInt("MIRROR_WORKERS", 2),
			PollInterval: mirrorPollInterval,
			MaxAttempts:  getEnvAsInt("MIRROR_MAX_ATTEMPTS", 8),
			BaseBackoff:  mirrorBaseBackoff,
			MaxBackoff:   mirrorMaxBackoff,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// overlayFile накладывает значения из YAML файла поверх значений окружения.
func (c *Config) overlayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла конфигурации: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value := 0
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}

	return value
}
