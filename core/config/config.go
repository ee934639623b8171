package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"asset-binder/core/binding"
	"asset-binder/core/database"
	"asset-binder/core/logger"
	"asset-binder/core/server"
	"asset-binder/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per concern.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Binding holds configuration for binding sessions and the import backend.
	Binding binding.Config `mapstructure:"binding"`
}

// LoadConfig loads configuration from an optional .env file in path and the
// environment. Environment variables map to nested keys (SERVER_PORT -> server.port).
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(path, ".env")

	// A missing .env is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if !config.Binding.IsValidBackend() {
		return nil, fmt.Errorf("invalid binding backend %q", config.Binding.Backend)
	}
	if config.Binding.UndoDepth < 0 || config.Binding.PreviewTTLSeconds < 0 {
		return nil, fmt.Errorf("binding undo_depth and preview_ttl_seconds must not be negative")
	}

	return &config, nil
}

// bindValues walks the struct and registers every 'mapstructure' key in Viper with the
// value of its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// An empty default still registers the key for AutomaticEnv.
		v.SetDefault(key, defaultValue)
	}
}
