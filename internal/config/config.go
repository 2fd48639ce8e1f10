package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// Earth Engine cloud project and bearer token.
	EEProject     string
	EEAccessToken string

	// Google Maps static-image API key.
	MapsAPIKey string

	// Optional reverse-geocoding key; map captures skip address lookup
	// when empty.
	GeocoderAPIKey string

	// HTTPTimeout bounds every outbound call.
	HTTPTimeout time.Duration

	// Image directories.
	OutputDir string // LST thumbnails
	MapsDir   string // street-view and hybrid captures

	// Image retention, enforced per directory.
	StoreMaxFiles int           // max files kept per directory (0 = unlimited)
	StoreMaxAge   time.Duration // max file age (0 = unlimited)
	SweepInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
// Credentials are never compiled in; they must arrive via environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.EEProject = os.Getenv("EE_PROJECT")
	if cfg.EEProject == "" {
		return nil, fmt.Errorf("EE_PROJECT is required")
	}
	cfg.EEAccessToken = os.Getenv("EE_ACCESS_TOKEN")

	cfg.MapsAPIKey = os.Getenv("MAPS_API_KEY")
	if cfg.MapsAPIKey == "" {
		return nil, fmt.Errorf("MAPS_API_KEY is required")
	}
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.OutputDir = getenvDefault("OUTPUT_DIR", "outputs")
	cfg.MapsDir = getenvDefault("MAPS_DIR", "static/maps")

	cfg.StoreMaxFiles = getenvInt("STORE_MAX_FILES", 500)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "168h") // one week
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	sweepStr := getenvDefault("SWEEP_INTERVAL", "1h")
	sweep, err := time.ParseDuration(sweepStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = sweep

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
