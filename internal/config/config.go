package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name     string `yaml:"name" validate:"required"`
		Port     string `yaml:"port" validate:"required,numeric"`
		LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
		Pretty   bool   `yaml:"pretty"`
	} `yaml:"app"`

	API struct {
		URL     string            `yaml:"url" validate:"required,url"`
		Timeout time.Duration     `yaml:"timeout" validate:"gt=0"`
		Headers map[string]string `yaml:"headers"`
	} `yaml:"api"`

	Catalog struct {
		HiddenCityIDs         []int64 `yaml:"hidden_city_ids"`
		CityScopedCategoryIDs []int64 `yaml:"city_scoped_category_ids"`
	} `yaml:"catalog"`

	Tracing struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"tracing"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "storefront"
	cfg.App.Port = "8080"
	cfg.App.LogLevel = "info"
	cfg.API.Timeout = 10 * time.Second
	cfg.Catalog.HiddenCityIDs = []int64{5}
	cfg.Catalog.CityScopedCategoryIDs = []int64{1}
	return cfg
}

// Load builds the configuration from defaults, then the YAML file at yamlPath, then the
// environment (after loading envPath into it). Empty paths and missing files are skipped.
func Load(yamlPath, envPath string) (*Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config file: %w", err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("invalid config file: %w", err)
			}
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP_PORT"); v != "" {
		cfg.App.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_PRETTY: %w", err)
		}
		cfg.App.Pretty = pretty
	}

	if v := os.Getenv("API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("API_HEADERS"); v != "" {
		headers, err := parseHeaders(v)
		if err != nil {
			return err
		}
		cfg.API.Headers = headers
	}

	if v := os.Getenv("CATALOG_HIDDEN_CITY_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_HIDDEN_CITY_IDS: %w", err)
		}
		cfg.Catalog.HiddenCityIDs = ids
	}
	if v := os.Getenv("CATALOG_CITY_SCOPED_CATEGORY_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("invalid CATALOG_CITY_SCOPED_CATEGORY_IDS: %w", err)
		}
		cfg.Catalog.CityScopedCategoryIDs = ids
	}

	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
	return nil
}

// parseHeaders reads "Name=value,Other=value".
func parseHeaders(raw string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid API_HEADERS entry %q", pair)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
