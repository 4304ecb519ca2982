package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/skinlog/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials are the sync account used to open a remote store.
type Credentials struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// GetConnectionString retrieves the database connection string from the OS keyring.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.DefaultKeyringUser, connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser)
}

// GetCredentials returns the stored sync credentials. The username lives
// under a fixed account and the password under an account derived from it.
func GetCredentials() (Credentials, error) {
	username, err := get(constants.CredentialsKeyringUser)
	if err != nil {
		return Credentials{}, err
	}
	password, err := get(passwordAccount(username))
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: username, Password: password}, nil
}

// SetCredentials stores sync credentials, replacing any previous account.
func SetCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" {
		return errors.New("username cannot be empty")
	}
	if creds.Password == "" {
		return errors.New("password cannot be empty")
	}
	if previous, err := get(constants.CredentialsKeyringUser); err == nil && previous != creds.Username {
		_ = del(passwordAccount(previous))
	}
	if err := set(passwordAccount(creds.Username), creds.Password); err != nil {
		return err
	}
	return set(constants.CredentialsKeyringUser, creds.Username)
}

// DeleteCredentials removes the stored sync credentials.
func DeleteCredentials() error {
	username, err := get(constants.CredentialsKeyringUser)
	if err != nil {
		return err
	}
	if err := del(passwordAccount(username)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return del(constants.CredentialsKeyringUser)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered, it just holds nothing
	return err == nil || err == keyring.ErrNotFound
}

func passwordAccount(username string) string {
	return "sync:" + username
}

func get(account string) (string, error) {
	value, err := keyring.Get(constants.AppName, account)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func set(account, value string) error {
	if err := keyring.Set(constants.AppName, account, value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func del(account string) error {
	err := keyring.Delete(constants.AppName, account)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}
