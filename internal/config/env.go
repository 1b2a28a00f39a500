package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPlacesAPIKey   = "PLACES_API_KEY"
	EnvLanguageAPIKey = "LANGUAGE_API_KEY"
	EnvSMTPPassword   = "SMTP_PASSWORD"
)

// ErrMissingCredential is returned when a required environment variable is unset
var ErrMissingCredential = errors.New("missing required credential")

// Credentials holds the secrets for the external services
type Credentials struct {
	PlacesAPIKey   string
	LanguageAPIKey string
	SMTPPassword   string // optional
}

// LoadCredentials reads credentials from the environment after loading any
// .env files given (default ".env"). Missing files are ignored and variables
// already set in the environment win.
func LoadCredentials(envFiles ...string) (Credentials, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var creds Credentials
	var err error
	if creds.PlacesAPIKey, err = required(EnvPlacesAPIKey); err != nil {
		return Credentials{}, err
	}
	if creds.LanguageAPIKey, err = required(EnvLanguageAPIKey); err != nil {
		return Credentials{}, err
	}
	creds.SMTPPassword = os.Getenv(EnvSMTPPassword)
	return creds, nil
}

func required(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, key)
	}
	return v, nil
}
