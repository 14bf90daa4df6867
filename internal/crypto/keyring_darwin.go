//go:build darwin

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

type keychain struct{}

func newPlatformKeyring() Keyring {
	return &keychain{}
}

// GetKey reads the key from the macOS Keychain
func (k *keychain) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && key == "") {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key from keychain: %w", err)
	}
	return key, nil
}

// SetKey stores the key in the macOS Keychain
func (k *keychain) SetKey(key string) error {
	if err := keyring.Set(ServiceName, KeyName, key); err != nil {
		return fmt.Errorf("failed to store key in keychain: %w", err)
	}
	return nil
}

// DeleteKey removes the key; a missing key is not an error
func (k *keychain) DeleteKey() error {
	err := keyring.Delete(ServiceName, KeyName)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete key from keychain: %w", err)
	}
	return nil
}

func (k *keychain) IsAvailable() bool {
	probe := "__" + ServiceName + "_probe__"
	if err := keyring.Set(ServiceName, probe, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, probe)
	return true
}
