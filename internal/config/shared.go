package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		TempDir     string `mapstructure:"temp_dir"`
		LogLevel    string `mapstructure:"log_level"`
		JWTSecret   string `mapstructure:"jwt_secret"`
		MaxUploadMB int64  `mapstructure:"max_upload_mb"`
	} `mapstructure:"server"`
	Storage struct {
		// Provider is "local" or "s3" (B2 and other S3-compatible endpoints included)
		Provider  string `mapstructure:"provider"`
		LocalRoot string `mapstructure:"local_root"`
		Bucket    string `mapstructure:"bucket"`
		KeyID     string `mapstructure:"key_id"`
		AppKey    string `mapstructure:"app_key"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
	} `mapstructure:"storage"`
	Archive struct {
		VocabularyFile string `mapstructure:"vocabulary_file"`
		MoodLimit      int    `mapstructure:"mood_limit"`
		MediaPrefix    string `mapstructure:"media_prefix"`
	} `mapstructure:"archive"`
}

var keys = []string{
	"server.port",
	"server.metrics_port",
	"server.temp_dir",
	"server.log_level",
	"server.jwt_secret",
	"server.max_upload_mb",

	"storage.provider",
	"storage.local_root",
	"storage.bucket",
	"storage.key_id",
	"storage.app_key",
	"storage.endpoint",
	"storage.region",

	"archive.vocabulary_file",
	"archive.mood_limit",
	"archive.media_prefix",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.metrics_port", ":9091")
	v.SetDefault("server.temp_dir", os.TempDir())
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.max_upload_mb", 2048)

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_root", "./archive")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("archive.mood_limit", 10)
	v.SetDefault("archive.media_prefix", "/media/")
}

// Read builds the config from env vars (ARCHIVE_*) and the first config.yaml
// found in searchPaths. A missing config file is not an error.
func Read(searchPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARCHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	if len(searchPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config error: %w", err)
			}
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Provider {
	case "local":
	case "s3":
		if c.Storage.KeyID == "" || c.Storage.AppKey == "" {
			return fmt.Errorf("s3 storage needs ARCHIVE_STORAGE_KEY_ID and ARCHIVE_STORAGE_APP_KEY")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 storage needs ARCHIVE_STORAGE_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	if !strings.HasPrefix(c.Archive.MediaPrefix, "/") || !strings.HasSuffix(c.Archive.MediaPrefix, "/") {
		return fmt.Errorf("archive.media_prefix must start and end with '/', got %q", c.Archive.MediaPrefix)
	}
	return nil
}

// Load is Read(".", "../") that exits on failure.
func Load() *Config {
	cfg, err := Read(".", "../")
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	return cfg
}
