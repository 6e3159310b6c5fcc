// Package config loads runtime settings through Viper: defaults, an optional
// config.yaml in the working directory, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"stitchery/internal/models"
	"stitchery/internal/storage"

	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret"

// Config holds every setting the server needs.
type Config struct {
	AppPort            string
	DatabaseDriver     string
	DatabaseDSN        string
	JWTSecret          string
	UploadDir          string
	AllowedExtensions  []string
	MaxUploadBytes     int
	DefaultFlossLength float64
	MirrorPatternsPath string
	MirrorFlossPath    string
	RabbitMQURL        string
	StorageBackend     string
	S3                 storage.S3Config
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "data/stitchery.db")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("UPLOAD_DIR", "data/uploads")
	v.SetDefault("ALLOWED_EXTENSIONS", []string{"png", "jpg", "jpeg", "gif", "pdf"})
	v.SetDefault("MAX_UPLOAD_BYTES", 16<<20)
	v.SetDefault("DEFAULT_FLOSS_LENGTH", models.DefaultFlossLength)
	v.SetDefault("MIRROR_PATTERNS_PATH", "data/patterns.json")
	v.SetDefault("MIRROR_FLOSS_PATH", "data/floss.json")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "patterns")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", false)
}

// Load reads configuration into a Config. A missing config file is not an
// error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		DatabaseDriver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		AllowedExtensions:  splitList(v.GetStringSlice("ALLOWED_EXTENSIONS")),
		MaxUploadBytes:     v.GetInt("MAX_UPLOAD_BYTES"),
		DefaultFlossLength: v.GetFloat64("DEFAULT_FLOSS_LENGTH"),
		MirrorPatternsPath: v.GetString("MIRROR_PATTERNS_PATH"),
		MirrorFlossPath:    v.GetString("MIRROR_FLOSS_PATH"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		StorageBackend:     strings.ToLower(v.GetString("STORAGE_BACKEND")),
		S3: storage.S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == devJWTSecret {
		log.Println("Warning: JWT_SECRET is not set, using the development secret")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.StorageBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if len(c.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
