package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/skinlog/internal/cli"
	"github.com/julianstephens/skinlog/internal/keyring"
)

// LoginCmd stores sync credentials in the OS keyring. They are injected
// into PostgreSQL connections at startup.
type LoginCmd struct {
	Username string `arg:"" optional:"" help:"Account username."`
	Password string `help:"Account password. Prompted for when omitted." env:"SKINLOG_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	creds := keyring.Credentials{Username: strings.TrimSpace(c.Username), Password: c.Password}
	if creds.Username == "" || creds.Password == "" {
		if err := promptCredentials(&creds); err != nil {
			return err
		}
	}
	if err := keyring.SetCredentials(creds); err != nil {
		return err
	}
	fmt.Printf("✓ Logged in as %s\n", creds.Username)
	return nil
}

func promptCredentials(creds *keyring.Credentials) error {
	notEmpty := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Username").Value(&creds.Username).Validate(notEmpty),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password).Validate(notEmpty),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("login cancelled: %w", err)
	}
	creds.Username = strings.TrimSpace(creds.Username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteCredentials(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("Not logged in.")
			return nil
		}
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}
