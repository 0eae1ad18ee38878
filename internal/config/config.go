package config

import (
	"os"
	"time"
)

type Config struct {
	MongoURI    string
	MongoDB     string
	Port        string
	TokenSecret string
	TokenExpiry time.Duration
}

func Load() Config {
	return Config{
		MongoURI:    getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGODB_DB", "noteeasy"),
		Port:        getenv("PORT", "8080"),
		TokenSecret: getenv("TOKEN_SECRET", "dev-secret"),
		TokenExpiry: getenvDuration("TOKEN_EXPIRY", 7*24*time.Hour),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
