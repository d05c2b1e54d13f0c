package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/util"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

const (
	SourceTypeCSV      = "csv"
	SourceTypePostgres = "postgres"
)

type SourceConfig struct {
	Type      string `yaml:"type" validate:"oneof=csv postgres"`
	Directory string `yaml:"directory" validate:"required_if=Type csv"`
	DSN       string `yaml:"dsn" validate:"required_if=Type postgres"`
}

type Config struct {
	Options Options      `yaml:"options"`
	Source  SourceConfig `yaml:"source"`
}

func Default() Config {
	return Config{
		Options: DefaultOptions(),
		Source: SourceConfig{
			Type:      SourceTypeCSV,
			Directory: "data",
		},
	}
}

// Load reads the optional YAML file at path, applies TRAVIGO_* environment
// overrides (a .env file is honoured) and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}

	if err := applyEnvironment(&cfg, util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func applyEnvironment(cfg *Config, env map[string]string) error {
	if env["TRAVIGO_SOURCE_TYPE"] != "" {
		cfg.Source.Type = env["TRAVIGO_SOURCE_TYPE"]
	}
	if env["TRAVIGO_SOURCE_DIRECTORY"] != "" {
		cfg.Source.Directory = env["TRAVIGO_SOURCE_DIRECTORY"]
	}
	if env["TRAVIGO_DATABASE_URL"] != "" {
		cfg.Source.DSN = env["TRAVIGO_DATABASE_URL"]
	}

	if env["TRAVIGO_MULTI_DESTINATIONS"] != "" {
		cfg.Options.MultiDestinations = env["TRAVIGO_MULTI_DESTINATIONS"]
	}

	for name, target := range map[string]*bool{
		"TRAVIGO_VERBOSE":      &cfg.Options.Verbose,
		"TRAVIGO_VERBOSE_ALGO": &cfg.Options.VerboseAlgo,
		"TRAVIGO_ENABLE_TRACE": &cfg.Options.EnableTrace,
	} {
		if env[name] == "" {
			continue
		}
		value, err := strconv.ParseBool(env[name])
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*target = value
	}

	return nil
}
