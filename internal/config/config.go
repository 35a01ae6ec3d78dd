// Package config reads the relay's startup configuration from the
// environment. A .env file in the working directory is honored when present,
// matching how deployments ship the secret alongside the binary.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

const defaultPort = "5000"

// Config is everything the daemon needs to start. The relay holds no
// on-disk state, so this is the entire external contract.
type Config struct {
	// Port is the TCP port the HTTP server binds.
	Port string
	// Secret keys every capability token signature. Rotating it revokes all
	// outstanding tokens.
	Secret []byte
	// CORSOrigin, when non-empty, is the single origin echoed by the CORS
	// middleware. Empty disables CORS handling entirely.
	CORSOrigin string
}

// Load reads PORT, SERVER_SECRET, and CORS_ORIGIN. SERVER_SECRET has no
// default: without it every issued token would be forgeable, so Load fails
// and the daemon refuses to start.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("SERVER_SECRET")
	if secret == "" {
		return nil, errors.New("SERVER_SECRET is not set, refusing to start")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &Config{
		Port:       port,
		Secret:     []byte(secret),
		CORSOrigin: os.Getenv("CORS_ORIGIN"),
	}, nil
}
