// Package session bootstraps a store: it finds the sync credentials, hands
// them to backends that need them, loads the store and opens the hub.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/skinlog/internal/keyring"
	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/notify"
	"github.com/julianstephens/skinlog/internal/storage"
)

var ErrIncompleteCredentials = errors.New("credentials file must set both username and password")

// authenticator is implemented by backends that take credentials at runtime.
type authenticator interface {
	Authenticate(user, password string) error
}

// LoadCredentials reads the credentials file at path. When the file does not
// exist the OS keyring is consulted instead; no credentials at all is not an
// error.
func LoadCredentials(path string) (keyring.Credentials, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var creds keyring.Credentials
			if err := yaml.Unmarshal(data, &creds); err != nil {
				return keyring.Credentials{}, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
			}
			if creds.Username == "" || creds.Password == "" {
				return keyring.Credentials{}, ErrIncompleteCredentials
			}
			return creds, nil
		case !os.IsNotExist(err):
			return keyring.Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
		}
	}

	creds, err := keyring.GetCredentials()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrKeyringUnavailable) {
			logger.Debug("no stored credentials", "error", err)
			return keyring.Credentials{}, nil
		}
		return keyring.Credentials{}, err
	}
	return creds, nil
}

// Open authenticates and loads store, attaching hub to its writes. The hub's
// ready gate is opened with the outcome, so subscribers registered before
// Open see either their first result or the failure.
func Open(ctx context.Context, store storage.Provider, creds keyring.Credentials, hub *notify.Hub) error {
	err := open(ctx, store, creds)
	if hub != nil {
		if err == nil {
			hub.Attach(store)
		}
		hub.MarkReady(err)
	}
	return err
}

func open(ctx context.Context, store storage.Provider, creds keyring.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if auth, ok := store.(authenticator); ok {
		if err := auth.Authenticate(creds.Username, creds.Password); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	} else if !creds.Empty() {
		logger.Debug("backend ignores sync credentials", "backend", store.GetConfigPath())
	}

	done := make(chan error, 1)
	go func() { done <- store.Load() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to load store: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
