package command

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// symbolAlphabet is the character set matrix symbols are drawn from.
// Letters only: symbols must never contain ASCII digits or common
// separator characters, or the wire format becomes ambiguous.
const symbolAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MatrixCommand returns the matrix subcommand group.
func MatrixCommand() *cli.Command {
	return &cli.Command{
		Name:  "matrix",
		Usage: "Manage substitution matrices",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a fresh matrix as a YAML config snippet",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "columns",
						Aliases: []string{"n"},
						Value:   6,
						Usage:   "Symbols per digit",
					},
					&cli.IntFlag{
						Name:  "symbol-size",
						Value: 2,
						Usage: "Characters per symbol",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Deterministic seed (default: time-based)",
					},
				},
				Action: matrixGenerate,
			},
		},
	}
}

func matrixGenerate(c *cli.Context) error {
	columns := c.Int("columns")
	symbolSize := c.Int("symbol-size")
	if columns < 1 {
		return fmt.Errorf("columns must be at least 1")
	}
	if symbolSize < 1 {
		return fmt.Errorf("symbol-size must be at least 1")
	}

	needed := 10 * columns
	if capacity := math.Pow(float64(len(symbolAlphabet)), float64(symbolSize)); float64(needed) > capacity {
		return fmt.Errorf("cannot draw %d distinct symbols of size %d", needed, symbolSize)
	}

	seed := c.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := generateMatrix(rand.New(rand.NewSource(seed)), columns, symbolSize)

	// Emit as a snippet ready to paste under the server config root.
	fmt.Fprintln(c.App.Writer, "token:")
	fmt.Fprintln(c.App.Writer, "  matrix:")
	for d := 0; d < 10; d++ {
		fmt.Fprintf(c.App.Writer, "    %q: [", domain.DigitKeys[d:d+1])
		for i, symbol := range m[domain.DigitKeys[d:d+1]] {
			if i > 0 {
				fmt.Fprint(c.App.Writer, ", ")
			}
			fmt.Fprintf(c.App.Writer, "%q", symbol)
		}
		fmt.Fprintln(c.App.Writer, "]")
	}
	return nil
}

// generateMatrix draws 10*columns globally unique symbols.
func generateMatrix(rng *rand.Rand, columns, symbolSize int) domain.Matrix {
	seen := make(map[string]bool, 10*columns)
	draw := func() string {
		for {
			symbol := make([]byte, symbolSize)
			for i := range symbol {
				symbol[i] = symbolAlphabet[rng.Intn(len(symbolAlphabet))]
			}
			if !seen[string(symbol)] {
				seen[string(symbol)] = true
				return string(symbol)
			}
		}
	}

	m := make(domain.Matrix, 10)
	for d := 0; d < 10; d++ {
		row := make([]string, columns)
		for col := range row {
			row[col] = draw()
		}
		m[domain.DigitKeys[d:d+1]] = row
	}
	return m
}
