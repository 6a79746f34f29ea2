package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/sibe7691/tablelink/internal/client"
	"github.com/sibe7691/tablelink/internal/creds"
)

// loadConfig reads the HCL config and applies global CLI flags.
func loadConfig(cli *CLI) (*client.Config, error) {
	cfg, err := client.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.NoColor {
		cfg.UI.NoColor = true
	}
	if cfg.UI.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cfg *client.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// openStore returns the file-backed credential store from the config,
// creating the auth API client it refreshes through.
func openStore(cfg *client.Config) (*creds.FileStore, error) {
	path := cfg.Server.CredentialsFile
	if path == "" {
		var err error
		path, err = creds.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return creds.NewFileStore(path, creds.NewAPI(cfg.Server.AuthURL))
}
