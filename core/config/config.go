package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cover-manager/core/auth"
	"cover-manager/core/bib"
	"cover-manager/core/clients"
	"cover-manager/core/clients/catalog"
	"cover-manager/core/clients/loader"
	"cover-manager/core/clients/resolver"
	"cover-manager/core/database"
	"cover-manager/core/logger"
	"cover-manager/core/retry"
	"cover-manager/core/server"
	"cover-manager/core/storage"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations owned by the packages using them.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Catalog holds the bibliographic store endpoints.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Resolver holds the cover resolver endpoint.
	Resolver resolver.Config `mapstructure:"resolver"`
	// Loader holds the cover server endpoint.
	Loader loader.Config `mapstructure:"loader"`
	// Auth holds the credentials for write calls.
	Auth auth.Config `mapstructure:"auth"`
	// Retry holds the policy for retried reads.
	Retry retry.Config `mapstructure:"retry"`
	// Schema holds the MARC field conventions.
	Schema bib.Schema `mapstructure:"schema"`
	// Storage holds configuration for the staging object store.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the optional history database.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the validate tags of every section.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// normalize makes every base URL end with a slash so paths can be appended.
func (c *Config) normalize() {
	c.Catalog.BaseURL = clients.BaseURL(c.Catalog.BaseURL)
	c.Resolver.BaseURL = clients.BaseURL(c.Resolver.BaseURL)
	c.Loader.BaseURL = clients.BaseURL(c.Loader.BaseURL)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
