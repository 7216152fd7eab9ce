// Package config loads connection secrets from the environment and
// pipeline thresholds from a structured YAML document.
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Secrets holds everything that should never be checked into a config file:
// connection strings and credentials, loaded from the environment with a
// .env file as an optional local override.
type Secrets struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	WebhookURL    string
	WebhookSecret string
}

// LoadSecrets reads connection secrets from the environment.
func LoadSecrets() *Secrets {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &Secrets{
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "capflow"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "capflow"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "capflow"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		WebhookURL:    getEnvOrDefault("WEBHOOK_URL", ""),
		WebhookSecret: getEnvOrDefault("WEBHOOK_SECRET", ""),
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
