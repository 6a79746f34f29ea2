package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `help:"Path to HCL config file" default:"tablelink.hcl"`
	NoColor bool             `help:"Disable colored output"`

	Client   ClientCmd   `cmd:"" help:"Connect and open the interactive table viewer"`
	Tables   TablesCmd   `cmd:"" help:"List tables on the server and exit"`
	Login    LoginCmd    `cmd:"" help:"Log in and store credentials"`
	Register RegisterCmd `cmd:"" help:"Create an account and store credentials"`
	Logout   LogoutCmd   `cmd:"" help:"Discard stored credentials"`
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tablelink"),
		kong.Description("Terminal client for real-time multiplayer poker tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
