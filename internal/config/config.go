// Package config reads the portal's server configuration from
// environment variables and an optional .env file, grounded on the
// gateway's config.Load pattern: getEnv/getEnvInt/getEnvBool helpers
// over os.LookupEnv, loaded once at process start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-tunable value the server needs.
type Config struct {
	Addr            string
	Env             string
	GracefulTimeout time.Duration

	// Remote Drive provider
	DriveFileID    string
	DriveBootSync  bool
	DriveSyncToken string

	// Body and request limits
	MaxUploadBytes int64
	RequestTimeout time.Duration

	// Dashboard projection
	DashboardFilePath string

	LogLevel string
}

// defaultPort is the bind port per §6 when PORT is unset.
const defaultPort = 8050

// Load reads configuration from the environment and optional .env file.
// A missing .env is not an error — it is expected in production where
// configuration comes from the deployment environment directly. A
// malformed value for a variable that IS set (bad PORT, bad boolean
// flag) is a configuration error: the caller is expected to map it to
// the documented exit code 2 rather than silently fall back.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvPort("PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	gracefulSec, err := getEnvInt("CPOR_GRACEFUL_TIMEOUT_SEC", 15)
	if err != nil {
		return nil, err
	}
	requestTimeoutSec, err := getEnvInt("CPOR_REQUEST_TIMEOUT_SEC", 30)
	if err != nil {
		return nil, err
	}
	maxUploadBytes, err := getEnvInt("CPOR_MAX_UPLOAD_BYTES", 25*1024*1024)
	if err != nil {
		return nil, err
	}
	driveBootSync, err := getEnvBool("CPOR_DRIVE_BOOT_SYNC", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:              fmt.Sprintf(":%d", port),
		Env:               getEnv("ENV", "development"),
		GracefulTimeout:   time.Duration(gracefulSec) * time.Second,
		DriveFileID:       getEnv("CPOR_DRIVE_FILE_ID", ""),
		DriveBootSync:     driveBootSync,
		DriveSyncToken:    getEnv("CPOR_DRIVE_SYNC_TOKEN", ""),
		MaxUploadBytes:    int64(maxUploadBytes),
		RequestTimeout:    time.Duration(requestTimeoutSec) * time.Second,
		DashboardFilePath: getEnv("CPOR_DASHBOARD_FILE", "dashboard_data.json"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid integer", key, v)
	}
	return i, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func getEnvPort(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("config: %s=%q is not a valid port number", key, v)
	}
	return port, nil
}
