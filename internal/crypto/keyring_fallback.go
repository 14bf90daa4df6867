//go:build !darwin

package crypto

import "fmt"

// noKeyring is used where no OS keyring is wired up; the key must come
// from BILLING_DB_KEY.
type noKeyring struct{}

func newPlatformKeyring() Keyring {
	return noKeyring{}
}

func (noKeyring) GetKey() (string, error) {
	return "", fmt.Errorf("%w: set %s", ErrNoKey, EnvKey)
}

func (noKeyring) SetKey(string) error {
	return fmt.Errorf("no keyring on this platform: export %s to keep the key", EnvKey)
}

func (noKeyring) DeleteKey() error {
	return fmt.Errorf("no keyring on this platform: unset %s manually", EnvKey)
}

func (noKeyring) IsAvailable() bool { return false }
