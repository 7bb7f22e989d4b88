// Package secrets resolves sensitive configuration values (API keys,
// database credentials) from files, environment variables or inline config.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. Resolution order is File,
// then Env, then Value; the first non-empty result wins.
type Source struct {
	// Name is used in error messages to identify the secret.
	Name string
	// File points to a file containing the secret value.
	File string
	// Env names an environment variable holding the secret.
	Env string
	// Value is an inline secret provided via configuration or flags.
	Value string
}

// Load resolves the secret, trimmed of surrounding whitespace. It fails when
// no source yields a usable value.
func Load(src Source) (string, error) {
	secret, err := LoadOptional(src)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name(src))
	}

	return secret, nil
}

// LoadOptional resolves the secret like Load but returns an empty string,
// not an error, when nothing is configured. A configured but unreadable or
// empty file is still an error.
func LoadOptional(src Source) (string, error) {
	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name(src), file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name(src), file)
		}

		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	return strings.TrimSpace(src.Value), nil
}

func name(src Source) string {
	if n := strings.TrimSpace(src.Name); n != "" {
		return n
	}
	return "secret"
}
