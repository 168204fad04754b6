package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Access tokens
	TokenSecret   string
	TokenLifetime time.Duration

	// Federated identity (Google Sign-In + Firebase Auth)
	GoogleClientID    string
	FirebaseProjectID string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "loadlink"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		TokenSecret:   getEnv("ACCESS_TOKEN_SECRET", ""),
		TokenLifetime: parseDuration(getEnv("ACCESS_TOKEN_LIFETIME", "168h")),

		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}
