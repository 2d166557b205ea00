package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timecloak-go/internal/core/codec"
	"github.com/yndnr/timecloak-go/internal/infra/buildinfo"
	"github.com/yndnr/timecloak-go/internal/infra/confloader"
	"github.com/yndnr/timecloak-go/internal/server/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "timecloak-cli",
		Usage:   "TimeCloak token management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			MintCommand(),
			DecodeCommand(),
			MatrixCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file holding the matrix",
			EnvVars: []string{"TIMECLOAK_CLI_CONFIG"},
		},
	}
}

// loadCodec builds the codec from the configuration file named by the
// global --config flag.
func loadCodec(c *cli.Context) (*codec.Codec, *config.ServerConfig, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}

	cfg := config.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cdc, err := codec.New(cfg.Token.Matrix, codec.WithSeparator(cfg.Token.Separator))
	if err != nil {
		return nil, nil, err
	}
	return cdc, cfg, nil
}
