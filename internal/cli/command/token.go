package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timecloak-go/internal/core/service"
)

// MintCommand returns the mint command.
func MintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "Mint a token",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "at",
				Usage: "Timestamp to encode, Unix milliseconds (default: now)",
			},
		},
		Action: mint,
	}
}

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a token and print its timestamp",
		ArgsUsage: "TOKEN",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Also apply the configured clock-skew window",
			},
		},
		Action: decode,
	}
}

func mint(c *cli.Context) error {
	cdc, _, err := loadCodec(c)
	if err != nil {
		return err
	}

	at := time.Now()
	if ms := c.Int64("at"); ms != 0 {
		at = time.UnixMilli(ms)
	}

	issuer := service.NewIssuer(cdc)
	result, err := issuer.IssueAt(c.Context, at)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, result.Token)
	return nil
}

func decode(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one TOKEN argument")
	}
	token := c.Args().First()

	cdc, cfg, err := loadCodec(c)
	if err != nil {
		return err
	}

	if c.Bool("verify") {
		verifier := service.NewVerifier(cdc, service.WithSkew(cfg.Token.Skew()))
		result, err := verifier.Verify(c.Context, token)
		if err != nil {
			return err
		}
		printTimestamp(c, result.Timestamp)
		return nil
	}

	timestamp, err := cdc.Decode(token)
	if err != nil {
		return err
	}
	printTimestamp(c, timestamp)
	return nil
}

func printTimestamp(c *cli.Context, timestamp int64) {
	fmt.Fprintf(c.App.Writer, "%d\t%s\n",
		timestamp, time.UnixMilli(timestamp).UTC().Format(time.RFC3339Nano))
}
