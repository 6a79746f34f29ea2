// Package client holds configuration for the tablelink CLI client.
package client

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Environment variables recognized as overrides for headless use.
const (
	EnvServer   = "TABLELINK_SERVER"
	EnvAuthURL  = "TABLELINK_AUTH_URL"
	EnvLogLevel = "TABLELINK_LOG_LEVEL"
)

// Config is the complete client configuration.
type Config struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings.
type ServerConnection struct {
	URL             string `hcl:"url"`
	AuthURL         string `hcl:"auth_url,optional"`
	ConnectTimeout  int    `hcl:"connect_timeout,optional"`
	CredentialsFile string `hcl:"credentials_file,optional"`
}

// PlayerSettings contains player-specific settings.
type PlayerSettings struct {
	Name         string `hcl:"name,optional"`
	DefaultBuyIn int    `hcl:"default_buy_in,optional"`
}

// UISettings contains user interface settings.
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	NoColor  bool   `hcl:"no_color,optional"`
}

// Default returns the default client configuration.
func Default() *Config {
	return &Config{
		Server: ServerConnection{
			URL:            "ws://localhost:8080/ws",
			AuthURL:        "http://localhost:8080/api/auth",
			ConnectTimeout: 10,
		},
		Player: PlayerSettings{
			DefaultBuyIn: 200,
		},
		UI: UISettings{
			LogLevel: "warn",
		},
	}
}

// Load reads configuration from an HCL file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(filename string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		var loaded Config
		diags = gohcl.DecodeBody(file.Body, nil, &loaded)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}

		applyDefaults(&loaded, config)
		config = &loaded
	}

	if v := os.Getenv(EnvServer); v != "" {
		config.Server.URL = v
	}
	if v := os.Getenv(EnvAuthURL); v != "" {
		config.Server.AuthURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.UI.LogLevel = v
	}

	return config, nil
}

func applyDefaults(config, defaults *Config) {
	if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}
	if config.Server.AuthURL == "" {
		config.Server.AuthURL = defaults.Server.AuthURL
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.Player.DefaultBuyIn == 0 {
		config.Player.DefaultBuyIn = defaults.Player.DefaultBuyIn
	}
	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.Player.DefaultBuyIn <= 0 {
		return fmt.Errorf("default buy-in must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}
