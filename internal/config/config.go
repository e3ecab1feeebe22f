package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "MIDNITE"
	defaultHTTPAddress   = "0.0.0.0:8080"
	defaultDatabasePath  = "midnite.db"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultSessionIssuer = "midnite-auth"
	defaultSessionAud    = "midnite-api"
	defaultSessionTTL    = 60 * 24 * time.Hour
	defaultStorageDriver = "disk"
	defaultStorageRoot   = "midnite-storage"
	defaultPublicBaseURL = "http://localhost:8080/storage"
)

// StorageDriverDisk and StorageDriverS3 are the supported object store backends.
const (
	StorageDriverDisk = "disk"
	StorageDriverS3   = "s3"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress       string
	DatabasePath      string
	LogLevel          string
	LogFormat         string
	SessionSigningKey string
	SessionIssuer     string
	SessionAudience   string
	SessionTTL        time.Duration
	StorageDriver     string
	StorageRoot       string
	StoragePublicURL  string
	S3Bucket          string
	S3Region          string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("session.issuer", defaultSessionIssuer)
	configViper.SetDefault("session.audience", defaultSessionAud)
	configViper.SetDefault("session.ttl_minutes", int(defaultSessionTTL/time.Minute))
	configViper.SetDefault("storage.driver", defaultStorageDriver)
	configViper.SetDefault("storage.root", defaultStorageRoot)
	configViper.SetDefault("storage.public_base_url", defaultPublicBaseURL)
	configViper.SetDefault("storage.s3_bucket", "")
	configViper.SetDefault("storage.s3_region", "")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		DatabasePath:      configViper.GetString("database.path"),
		LogLevel:          configViper.GetString("log.level"),
		LogFormat:         configViper.GetString("log.format"),
		SessionSigningKey: configViper.GetString("session.signing_secret"),
		SessionIssuer:     configViper.GetString("session.issuer"),
		SessionAudience:   configViper.GetString("session.audience"),
		SessionTTL:        time.Duration(configViper.GetInt("session.ttl_minutes")) * time.Minute,
		StorageDriver:     configViper.GetString("storage.driver"),
		StorageRoot:       configViper.GetString("storage.root"),
		StoragePublicURL:  configViper.GetString("storage.public_base_url"),
		S3Bucket:          configViper.GetString("storage.s3_bucket"),
		S3Region:          configViper.GetString("storage.s3_region"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SessionSigningKey) == "" {
		return fmt.Errorf("session.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.StorageDriver {
	case StorageDriverDisk:
		if strings.TrimSpace(c.StorageRoot) == "" {
			return fmt.Errorf("storage.root is required for the disk driver")
		}
	case StorageDriverS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 driver")
		}
		if strings.TrimSpace(c.S3Region) == "" {
			return fmt.Errorf("storage.s3_region is required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q", StorageDriverDisk, StorageDriverS3)
	}
	return nil
}
