package main

import (
	"fmt"
	"time"

	"github.com/sibe7691/tablelink/internal/protocol"
	"github.com/sibe7691/tablelink/internal/session"
)

type TablesCmd struct {
	Timeout time.Duration `default:"10s" help:"How long to wait for the server's reply"`
}

func (c *TablesCmd) Run(cli *CLI) error {
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

	sub := sess.Subscribe(protocol.TypeTableList)
	defer sub.Close()

	if !controller.ConnectAndAuthenticate() {
		if state := controller.State(); state.LastError != "" {
			return fmt.Errorf("%s", state.LastError)
		}
		return fmt.Errorf("could not connect to %s", cfg.Server.URL)
	}
	if err := controller.WaitForStatus(session.StatusAuthenticated, c.Timeout); err != nil {
		return err
	}
	if err := controller.FetchTables(); err != nil {
		return err
	}

	select {
	case ev := <-sub.Events():
		data, ok := ev.Data.(*protocol.TableListData)
		if !ok {
			return fmt.Errorf("unexpected payload on table_list channel")
		}
		if len(data.Tables) == 0 {
			fmt.Println("no tables")
			return nil
		}
		for _, t := range data.Tables {
			fmt.Printf("%-12s %-20s %d/%d players  blinds %d/%d  %s\n",
				t.ID, t.Name, t.PlayerCount, t.MaxPlayers, t.SmallBlind, t.BigBlind, t.Status)
		}
		return nil
	case <-time.After(c.Timeout):
		return fmt.Errorf("timed out waiting for table list")
	}
}
