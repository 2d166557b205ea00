package codec

import (
	"strconv"
	"strings"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// Encode turns a non-negative millisecond timestamp into a token.
//
// The timestamp's decimal digits are emitted in a random order, each as
// a self-delimiting chunk carrying the substituted digit, the randomly
// chosen value column it was substituted with, and its original
// position. One metadata column, chosen per token and announced by the
// sauce, substitutes the latter two fields.
//
// Encode never fails for a non-negative timestamp under a validated
// matrix.
func (c *Codec) Encode(timestamp int64) (string, error) {
	if timestamp < 0 {
		return "", domain.ErrInvalidArgument.WithDetails("timestamp must be non-negative")
	}

	digits := strconv.FormatInt(timestamp, 10)

	// Emission order: a uniformly random permutation of digit positions.
	order := make([]int, len(digits))
	for i := range order {
		order[i] = i
	}
	c.shuffle(order)

	// FIFO queues of original positions per digit value. Occurrences of
	// the same digit are interchangeable, so pairing any queued position
	// with any emitted occurrence of that value reconstructs the same
	// timestamp regardless of shuffle order.
	var positions [10][]int
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		positions[d] = append(positions[d], i)
	}

	metaColumn := c.intn(c.columns)

	var body strings.Builder
	for _, at := range order {
		d := int(digits[at] - '0')

		position := positions[d][0]
		positions[d] = positions[d][1:]

		valueColumn := c.intn(c.columns)

		// The digit value is a single character, so its substitution is
		// always exactly one symbol.
		encodedDigit := c.rows[d][valueColumn]
		encodedValueColumn := c.substitute(valueColumn, metaColumn)
		encodedPosition := c.substitute(position, metaColumn)

		body.WriteString(encodedDigit)
		body.WriteString(strconv.Itoa(len(encodedValueColumn)))
		body.WriteString(encodedValueColumn)
		body.WriteString(strconv.Itoa(len(encodedPosition)))
		body.WriteString(encodedPosition)
	}

	// The sauce encodes the metadata column using the metadata column
	// itself.
	sauce := c.substitute(metaColumn, metaColumn)

	return sauce + c.separator + body.String(), nil
}

// substitute encodes each decimal digit of n with the given column's
// symbol, one symbol per digit.
func (c *Codec) substitute(n, column int) string {
	rendered := strconv.Itoa(n)
	var out strings.Builder
	out.Grow(len(rendered) * c.symbolSize)
	for i := 0; i < len(rendered); i++ {
		out.WriteString(c.rows[rendered[i]-'0'][column])
	}
	return out.String()
}
