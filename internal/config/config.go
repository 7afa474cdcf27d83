package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultDSN  = "host=localhost user=postgres password=postgres dbname=propdesk port=5432 sslmode=disable"
	defaultCORS = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	CORSOrigins string
	JWTSecret   string

	DatabaseDriver   string // postgres, mysql or sqlite
	DatabaseDSN      string
	DatabaseLogLevel string // silent, error, warn, info

	StorageDriver     string // local or drive
	StorageLocalRoot  string
	DriveCredentials  string // service account JSON file
	DriveParentFolder string

	// StrictUpdateValidation makes updates reject an empty code or address the way creates do.
	StrictUpdateValidation bool
}

// Load reads defaults, then application.yml from "." or "./config" if present, then the
// environment. Environment keys are the upper-cased config keys with "." replaced by "_".
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("http_port", "8080")
	v.SetDefault("cors_origins", defaultCORS)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_root", "./property-files")
	v.SetDefault("storage.drive_credentials", "")
	v.SetDefault("storage.drive_parent_id", "")
	v.SetDefault("deals.strict_update_validation", false)

	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read application.yml: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("cors_origins", "CORS_ALLOWED_ORIGINS")

	cfg := &Config{
		HTTPPort:               v.GetString("http_port"),
		CORSOrigins:            v.GetString("cors_origins"),
		JWTSecret:              v.GetString("jwt_secret"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseDSN:            v.GetString("database.dsn"),
		DatabaseLogLevel:       strings.ToLower(v.GetString("database.log_level")),
		StorageDriver:          strings.ToLower(v.GetString("storage.driver")),
		StorageLocalRoot:       v.GetString("storage.local_root"),
		DriveCredentials:       v.GetString("storage.drive_credentials"),
		DriveParentFolder:      v.GetString("storage.drive_parent_id"),
		StrictUpdateValidation: v.GetBool("deals.strict_update_validation"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value; set your own connection string in production.")
	}
	if cfg.CORSOrigins == defaultCORS {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value; set your own domain in production.")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	switch c.StorageDriver {
	case "local":
	case "drive":
		if c.DriveCredentials == "" {
			return errors.New("STORAGE_DRIVE_CREDENTIALS is required for the drive storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	return nil
}

// AllowedOrigins splits the comma separated CORS list.
func (c *Config) AllowedOrigins() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
