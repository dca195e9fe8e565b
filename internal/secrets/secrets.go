// Package secrets resolves oracle API keys.
//
// Keys come from, in order: an explicit value (flag), the provider's
// environment variable, then the OS keyring under the "leadscout" service.
// Keys are never written to the config file.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/leadscout/leadscout/internal/ai"
)

// Service is the keyring service name.
const Service = "leadscout"

// ErrNoKey is returned when no source holds a key for the provider.
var ErrNoKey = errors.New("no API key configured")

// Source names where a key was found.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

func account(provider string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	switch p {
	case "":
		return ai.ProviderAnthropic, nil
	case ai.ProviderAnthropic, ai.ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}

// ResolveAPIKey returns the key for provider and where it came from.
func ResolveAPIKey(provider, explicit string) (string, Source, error) {
	acct, err := account(provider)
	if err != nil {
		return "", "", err
	}
	if explicit != "" {
		return explicit, SourceFlag, nil
	}
	if key := ai.APIKeyFromEnv(acct); key != "" {
		return key, SourceEnv, nil
	}

	key, err := keyring.Get(Service, acct)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", "", fmt.Errorf("%w for %s: set %s or run 'leadscout auth set %s'",
			ErrNoKey, acct, ai.APIKeyEnv(acct), acct)
	}
	if err != nil {
		return "", "", fmt.Errorf("reading keyring: %w", err)
	}
	return key, SourceKeyring, nil
}

// Store saves a key in the OS keyring.
func Store(provider, key string) error {
	acct, err := account(provider)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if err := keyring.Set(Service, acct, key); err != nil {
		return fmt.Errorf("writing keyring: %w", err)
	}
	return nil
}

// Delete removes a stored key. Deleting a missing key is not an error.
func Delete(provider string) error {
	acct, err := account(provider)
	if err != nil {
		return err
	}
	if err := keyring.Delete(Service, acct); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting from keyring: %w", err)
	}
	return nil
}

// Mask shortens a key for display.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "…" + key[len(key)-4:]
}
