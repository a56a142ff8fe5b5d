package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the server configuration. Values are read once at startup and
// passed explicitly; core packages never read the environment themselves.
type Config struct {
	Addr          string // listen address
	DatabaseURL   string // empty means the in-memory store
	PublicBaseURL string // base of the join links encoded into QR codes
	Debug         bool
}

// FromEnv loads a .env file if present and reads the configuration.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          os.Getenv("ADDR"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		Debug:         os.Getenv("DEBUG") != "",
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost" + cfg.Addr
	}
	return cfg
}
