package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env              string `mapstructure:"env"`
	Port             string `mapstructure:"port"`
	DatabaseURL      string `mapstructure:"database_url"`
	SQLitePath       string `mapstructure:"sqlite_path"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	GeminiModel      string `mapstructure:"gemini_model"`
	Timezone         string `mapstructure:"timezone"`
	DefaultLanguage  string `mapstructure:"default_language"`
	ImportDateFormat string `mapstructure:"import_date_format"`
}

func Default() Config {
	return Config{
		Env:              "production",
		Port:             "8080",
		SQLitePath:       "markjournal.db",
		GeminiModel:      "gemini-2.0-flash",
		DefaultLanguage:  "it",
		ImportDateFormat: "dd-MM-yyyy",
	}
}

var envKeys = map[string]string{
	"env":                "APP_ENV",
	"port":               "PORT",
	"database_url":       "DATABASE_URL",
	"sqlite_path":        "SQLITE_PATH",
	"jwt_secret":         "JWT_SECRET",
	"gemini_api_key":     "GEMINI_API_KEY",
	"gemini_model":       "GEMINI_MODEL",
	"timezone":           "JOURNAL_TIMEZONE",
	"default_language":   "JOURNAL_LANGUAGE",
	"import_date_format": "IMPORT_DATE_FORMAT",
}

// Load reads .env (if present), an optional config file named by
// JOURNAL_CONFIG, and the environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	v := viper.New()
	v.SetDefault("env", cfg.Env)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("database_url", cfg.DatabaseURL)
	v.SetDefault("sqlite_path", cfg.SQLitePath)
	v.SetDefault("jwt_secret", cfg.JWTSecret)
	v.SetDefault("gemini_api_key", cfg.GeminiAPIKey)
	v.SetDefault("gemini_model", cfg.GeminiModel)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("default_language", cfg.DefaultLanguage)
	v.SetDefault("import_date_format", cfg.ImportDateFormat)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path := os.Getenv("JOURNAL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}
	cfg.DefaultLanguage = strings.ToLower(strings.TrimSpace(cfg.DefaultLanguage))
	return cfg, nil
}

// Development reports whether verbose, human-readable logging is wanted.
func (c Config) Development() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Location resolves the configured time zone, falling back to time.Local.
func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}
