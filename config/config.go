package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDisk = "disk"
	StorageS3   = "s3"

	PolicyAdminOnly  = "admin-only"
	PolicyUserExists = "user-exists"
)

// Config is read once at startup. Changing any value needs a restart.
type Config struct {
	Port     int    `mapstructure:"port" validate:"gt=0,lt=65536"`
	APIURL   string `mapstructure:"api_url" validate:"required,startswith=/"`
	Secret   string `mapstructure:"secret" validate:"required"`
	MongoURI string `mapstructure:"mongo_uri" validate:"required"`
	DBName   string `mapstructure:"db_name" validate:"required"`

	StorageDriver string `mapstructure:"storage_driver" validate:"oneof=disk s3"`
	UploadDir     string `mapstructure:"upload_dir" validate:"required_if=StorageDriver disk"`
	BucketName    string `mapstructure:"bucket_name" validate:"required_if=StorageDriver s3"`
	AWSRegion     string `mapstructure:"aws_region" validate:"required_if=StorageDriver s3"`

	RedisURL     string        `mapstructure:"redis_url"`
	UserCacheTTL time.Duration `mapstructure:"user_cache_ttl"`

	RevocationPolicy string        `mapstructure:"revocation_policy" validate:"oneof=admin-only user-exists"`
	TokenTTL         time.Duration `mapstructure:"token_ttl" validate:"gt=0"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`

	RateLimit   int    `mapstructure:"rate_limit" validate:"gte=0"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

var defaults = map[string]any{
	"port":              3000,
	"api_url":           "/api/v1",
	"secret":            "",
	"mongo_uri":         "",
	"db_name":           "eshop",
	"storage_driver":    StorageDisk,
	"upload_dir":        "public/uploads",
	"bucket_name":       "",
	"aws_region":        "",
	"redis_url":         "",
	"user_cache_ttl":    5 * time.Minute,
	"revocation_policy": PolicyAdminOnly,
	"token_ttl":         24 * time.Hour,
	"log_level":         "info",
	"log_format":        "text",
	"rate_limit":        0,
	"cors_origins":      "",
}

// Load reads an optional .env file, then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Origins splits CORS_ORIGINS. An empty result means the default origin policy.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
