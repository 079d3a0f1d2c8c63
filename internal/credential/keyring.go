package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "ghn"

// ErrNoStoredToken is returned when the keyring has no token for a host.
var ErrNoStoredToken = errors.New("no token stored for host")

// tokenKey names the keyring entry for host. Entries are per host so a
// github.com token and a GitHub Enterprise token can live side by side.
func tokenKey(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		host = DefaultHost
	}
	return "oauth_token:" + host
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/ghn/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("ghn-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// LoadToken returns the token stored for host, or ErrNoStoredToken.
func LoadToken(host string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey(host))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoStoredToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token for %s: %w", host, err)
	}
	return string(item.Data), nil
}

// StoreToken saves token for host, replacing any previous one.
func StoreToken(host, token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         tokenKey(host),
		Data:        []byte(token),
		Label:       "ghn token for " + host,
		Description: "GitHub access token with the notifications scope",
	})
	if err != nil {
		return fmt.Errorf("storing token for %s: %w", host, err)
	}
	return nil
}

// DeleteToken removes the token stored for host. Removing a token that
// was never stored is not an error.
func DeleteToken(host string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(tokenKey(host)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing token for %s: %w", host, err)
	}
	return nil
}
