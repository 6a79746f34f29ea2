package main

import (
	"fmt"
	"time"

	"github.com/sibe7691/tablelink/internal/session"
	"github.com/sibe7691/tablelink/internal/viewer"
)

type ClientCmd struct {
	Table string `help:"Table to join immediately after connecting"`
	BuyIn int    `help:"Buy-in for --table (defaults to config)"`
}

func (c *ClientCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	sess := session.New(cfg.Server.URL, logger)
	controller := session.NewController(sess, store, logger)
	defer controller.Close()
	defer sess.Disconnect()

	if !controller.ConnectAndAuthenticate() {
		if state := controller.State(); state.LastError != "" {
			return fmt.Errorf("%s", state.LastError)
		}
		return fmt.Errorf("could not connect to %s", cfg.Server.URL)
	}

	timeout := time.Duration(cfg.Server.ConnectTimeout) * time.Second
	if err := controller.WaitForStatus(session.StatusAuthenticated, timeout); err != nil {
		if state := controller.State(); state.LastError != "" {
			return fmt.Errorf("%s", state.LastError)
		}
		return err
	}

	if c.Table != "" {
		buyIn := c.BuyIn
		if buyIn == 0 {
			buyIn = cfg.Player.DefaultBuyIn
		}
		if err := controller.JoinTable(c.Table, nil, buyIn); err != nil {
			return err
		}
	}

	return viewer.Run(controller, cfg.Player.DefaultBuyIn)
}
