package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	MedicineCSV   string
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "3000"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:pharmacy.db?_pragma=foreign_keys(1)"
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		} else {
			log.Printf("invalid SESSION_TTL_HOURS value %q, defaulting to 24", raw)
		}
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 3000", port)
		port = "3000"
	}

	return Config{
		HTTPPort:      port,
		DatabaseDSN:   dsn,
		MedicineCSV:   os.Getenv("MEDICINE_CSV"),
		SessionTTL:    ttl,
		SweepInterval: time.Hour,
	}
}
