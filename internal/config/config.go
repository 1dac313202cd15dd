package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisURL   string
	// EventChannel is the Redis pub/sub channel used to fan feed events out
	// across instances. Empty RedisURL disables the bridge.
	EventChannel string
	JWTSecret    string

	MinioURL       string
	MinioUser      string
	MinioPassword  string
	MinioBucket    string
	MinioPublicURL string
}

func Load() *Config {
	// Missing .env is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "tide"),
		DBPassword:   getEnv("DB_PASSWORD", "tide_dev_password"),
		DBName:       getEnv("DB_NAME", "tide"),
		RedisURL:     getEnv("REDIS_URL", ""),
		EventChannel: getEnv("EVENT_CHANNEL", "tide:events"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),

		MinioURL:       getEnv("MINIO_URL", "localhost:9000"),
		MinioUser:      getEnv("MINIO_USER", "minioadmin"),
		MinioPassword:  getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "tide-uploads"),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
