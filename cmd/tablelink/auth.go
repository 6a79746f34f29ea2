package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/sibe7691/tablelink/internal/creds"
)

type LoginCmd struct {
	Username string `arg:"" help:"Account name"`
	Password string `help:"Password (prompted if omitted)"`
}

func (c *LoginCmd) Run(cli *CLI) error {
	return obtainCredentials(cli, c.Username, c.Password, func(api *creds.API, ctx context.Context, user, pass string) (creds.Credentials, error) {
		return api.Login(ctx, user, pass)
	})
}

type RegisterCmd struct {
	Username string `arg:"" help:"Account name"`
	Password string `help:"Password (prompted if omitted)"`
}

func (c *RegisterCmd) Run(cli *CLI) error {
	return obtainCredentials(cli, c.Username, c.Password, func(api *creds.API, ctx context.Context, user, pass string) (creds.Credentials, error) {
		return api.Register(ctx, user, pass)
	})
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func obtainCredentials(cli *CLI, username, password string, exchange func(*creds.API, context.Context, string, string) (creds.Credentials, error)) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pair, err := exchange(creds.NewAPI(cfg.Server.AuthURL), ctx, username, password)
	if err != nil {
		if errors.Is(err, creds.ErrInvalidCredentials) {
			return fmt.Errorf("rejected by server: %w", err)
		}
		return err
	}

	if err := store.Save(pair); err != nil {
		return err
	}
	fmt.Printf("credentials stored for %s\n", username)
	return nil
}
