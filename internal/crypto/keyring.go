package crypto

import (
	"errors"
	"os"
	"strings"
)

// Keyring stores the database encryption key
type Keyring interface {
	GetKey() (string, error)
	SetKey(key string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "billing"
	KeyName     = "store-encryption-key"

	// EnvKey supplies the key without touching the OS keyring.
	EnvKey = "BILLING_DB_KEY"
)

// ErrNoKey means no key has been stored yet.
var ErrNoKey = errors.New("database encryption key not configured")

// NewKeyring returns a keyring that prefers BILLING_DB_KEY and otherwise
// uses the platform store.
func NewKeyring() Keyring {
	return &envKeyring{lookup: os.LookupEnv, next: newPlatformKeyring()}
}

// envKeyring reads the key from the environment before deferring to next.
type envKeyring struct {
	lookup func(string) (string, bool)
	next   Keyring
}

func (k *envKeyring) env() (string, bool) {
	v, ok := k.lookup(EnvKey)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (k *envKeyring) GetKey() (string, error) {
	if v, ok := k.env(); ok {
		return v, nil
	}
	return k.next.GetKey()
}

func (k *envKeyring) SetKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	return k.next.SetKey(key)
}

func (k *envKeyring) DeleteKey() error {
	return k.next.DeleteKey()
}

func (k *envKeyring) IsAvailable() bool {
	if _, ok := k.env(); ok {
		return true
	}
	return k.next.IsAvailable()
}
