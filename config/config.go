package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects everything the process reads from the environment, so
// the rest of the code receives values instead of reaching for os.Getenv.
type Config struct {
	Port            string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	StripeSecretKey string
	WebhookSecret   string
	WorkerCount     int
}

// LoadEnv loads environment variables from a .env file.
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file loaded")
	}
}

// GetEnv retrieves environment variables with a fallback.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// New assembles the runtime configuration from the environment.
func New() *Config {
	workers, err := strconv.Atoi(GetEnv("WORKER_COUNT", "2"))
	if err != nil || workers < 1 {
		workers = 2
	}

	return &Config{
		Port:            GetEnv("PORT", "3000"),
		MongoURI:        GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   GetEnv("MONGODB_DATABASE", "northmart"),
		RedisAddr:       GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   GetEnv("REDIS_PASSWORD", ""),
		JWTSecret:       GetEnv("JWT_SECRET", ""),
		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret:   GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		WorkerCount:     workers,
	}
}
