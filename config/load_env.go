package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/subosito/gotenv"
)

func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment")
	}
}

func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func GetEnvFloat(key string, defaultValue float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("[Config] Invalid float value, using default",
			slog.String("key", key),
			slog.String("value", value))
		return defaultValue
	}
	return parsed
}

func GetEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("[Config] Invalid int value, using default",
			slog.String("key", key),
			slog.String("value", value))
		return defaultValue
	}
	return parsed
}
