package codec

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// DefaultSeparator separates the sauce from the body. It must never
// occur inside a matrix symbol and must not be an ASCII digit; the
// server config layer enforces that, not this package.
const DefaultSeparator = ":"

// Codec encodes timestamps into obfuscated tokens and decodes them
// back. It holds the substitution matrix plus precomputed reverse
// lookup structures and is immutable after construction: changing the
// matrix means building a new Codec.
//
// A Codec is safe for concurrent use. Decoding touches only immutable
// state; encoding serializes access to the random source internally.
type Codec struct {
	separator  string
	columns    int
	symbolSize int

	// rows[d][col] is the substitution symbol for digit value d.
	rows [10][]string

	// byColumn[col] maps symbol -> digit value for one column; anyColumn
	// maps symbol -> digit value across all columns and is used only for
	// the sauce, where the column is not yet known. Both are built
	// first-writer-wins, so correctness rests on the matrix's global
	// uniqueness invariant.
	byColumn  []map[string]int
	anyColumn map[string]int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Codec.
type Option func(*Codec)

// WithSeparator sets the sauce/body separator.
func WithSeparator(separator string) Option {
	return func(c *Codec) {
		c.separator = separator
	}
}

// WithRand sets the random source used for shuffling and column
// selection. Tests use this to make encoding deterministic; the
// default is seeded from the wall clock. Obfuscation of digit order is
// the only job of this source, so it need not be cryptographically
// strong.
func WithRand(rng *rand.Rand) Option {
	return func(c *Codec) {
		c.rng = rng
	}
}

// New validates the matrix shape and builds the codec with its reverse
// lookup index. Construction is O(10·N) for N columns. It returns
// domain.ErrMatrixMalformed if the matrix violates a structural
// invariant.
func New(matrix domain.Matrix, opts ...Option) (*Codec, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	c := &Codec{
		separator:  DefaultSeparator,
		columns:    matrix.Columns(),
		symbolSize: matrix.SymbolSize(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c.byColumn = make([]map[string]int, c.columns)
	for col := 0; col < c.columns; col++ {
		c.byColumn[col] = make(map[string]int, 10)
	}
	c.anyColumn = make(map[string]int, 10*c.columns)

	for digit := 0; digit < 10; digit++ {
		row := matrix[domain.DigitKeys[digit:digit+1]]
		symbols := make([]string, len(row))
		copy(symbols, row)
		c.rows[digit] = symbols

		for col, symbol := range symbols {
			if _, taken := c.byColumn[col][symbol]; !taken {
				c.byColumn[col][symbol] = digit
			}
			if _, taken := c.anyColumn[symbol]; !taken {
				c.anyColumn[symbol] = digit
			}
		}
	}

	return c, nil
}

// Columns returns the number of substitution columns.
func (c *Codec) Columns() int {
	return c.columns
}

// SymbolSize returns the uniform symbol length.
func (c *Codec) SymbolSize() int {
	return c.symbolSize
}

// Separator returns the configured sauce/body separator.
func (c *Codec) Separator() string {
	return c.separator
}

// intn draws a uniform value in [0, n) under the codec's lock.
// math/rand.Rand is not safe for concurrent use.
func (c *Codec) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}

// shuffle permutes order in place (Fisher–Yates) under the codec's lock.
func (c *Codec) shuffle(order []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(order) - 1; i > 0; i-- {
		j := c.rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}
