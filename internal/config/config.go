package config

import (
	"errors"
	"os"
	"strconv"
)

// App configuration loaded from environment variables.
type Config struct {
	Port      string
	Provider  string
	MongoURI  string
	RedisAddr string

	// Session engine overrides. Zero values fall back to engine defaults.
	TechnicalQuestions int
	HRQuestions        int
	TechnicalCutoff    float64

	// Public base URL used in interview invitation emails.
	PublicURL string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8086"),
		Provider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		MongoURI:           os.Getenv("MONGO_URI"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		TechnicalQuestions: getEnvInt("TECHNICAL_QUESTIONS", 0),
		HRQuestions:        getEnvInt("HR_QUESTIONS", 0),
		TechnicalCutoff:    getEnvFloat("TECHNICAL_CUTOFF", 0),
		PublicURL:          getEnvOrDefault("PUBLIC_URL", "http://localhost:3000"),
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + cfg.Provider + ". Currently supported: gemini")
	}
	if cfg.TechnicalQuestions < 0 || cfg.HRQuestions < 0 {
		return errors.New("question counts must not be negative")
	}
	if cfg.TechnicalCutoff < 0 || cfg.TechnicalCutoff > 100 {
		return errors.New("TECHNICAL_CUTOFF must be within [0, 100]")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
