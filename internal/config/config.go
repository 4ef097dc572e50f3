package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// app config, loaded from environment variables
type Config struct {
	Port      string
	CORSAllow []string
	Provider  string
	AITimeout time.Duration
	RedisAddr string // empty disables the presence publisher
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		Provider:  getEnvOrDefault("AI_PROVIDER", "gemini"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}
	config.CORSAllow = splitCSV(getEnvOrDefault("CORS_ALLOW", "*"))

	secs, err := strconv.Atoi(getEnvOrDefault("AI_TIMEOUT_SECONDS", "30"))
	if err != nil || secs <= 0 {
		return nil, errors.New("AI_TIMEOUT_SECONDS must be a positive integer")
	}
	config.AITimeout = time.Duration(secs) * time.Second

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
