package config

import (
	"fmt"
	"os"
	"strings"
)

const secretRefPrefix = "secretref:"

// resolveSecret replaces a whole-value reference with the secret it names:
//
//	secretref:file:/run/secrets/pg_dsn   file contents, trailing newline trimmed
//	secretref:env:PG_DSN                 environment variable
//
// Other values are returned unchanged.
func resolveSecret(value string) (string, error) {
	if !strings.HasPrefix(value, secretRefPrefix) {
		return value, nil
	}
	provider, ref, ok := strings.Cut(strings.TrimPrefix(value, secretRefPrefix), ":")
	if !ok || ref == "" {
		return "", fmt.Errorf("%w: malformed secret reference", ErrSecret)
	}

	var secret string
	switch provider {
	case "file":
		data, err := os.ReadFile(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSecret, err)
		}
		secret = strings.TrimRight(string(data), "\r\n")
	case "env":
		v, ok := os.LookupEnv(ref)
		if !ok {
			return "", fmt.Errorf("%w: %s is not set", ErrSecret, ref)
		}
		secret = v
	default:
		return "", fmt.Errorf("%w: unknown provider %q", ErrSecret, provider)
	}

	if secret == "" {
		return "", fmt.Errorf("%w: %s:%s resolved to an empty value", ErrSecret, provider, ref)
	}
	return secret, nil
}

// resolveSecrets resolves every credential-bearing field in place.
func (c *Config) resolveSecrets() error {
	fields := []*string{&c.Auth.JWTSecret}
	for i := range c.Auth.APIKeys {
		fields = append(fields, &c.Auth.APIKeys[i])
	}
	for i := range c.Checks {
		fields = append(fields, &c.Checks[i].DSN, &c.Checks[i].Password, &c.Checks[i].URL)
	}

	for _, f := range fields {
		v, err := resolveSecret(*f)
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}
