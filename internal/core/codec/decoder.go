package codec

import (
	"strconv"
	"strings"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// Decode recovers the timestamp embedded in a token.
//
// Every failure (missing separator, unknown symbol, malformed length
// prefix, out-of-range column or position, numeric overflow) returns
// the same domain.ErrTokenInvalid. The uniformity is deliberate: the
// decoder must not act as an oracle that tells an attacker why a
// guessed token was rejected.
func (c *Codec) Decode(token string) (int64, error) {
	at := strings.Index(token, c.separator)
	if at < 0 {
		return 0, domain.ErrTokenInvalid
	}
	sauce := token[:at]
	body := token[at+len(c.separator):]

	metaColumn, ok := c.reverseAny(sauce)
	if !ok || metaColumn >= c.columns {
		return 0, domain.ErrTokenInvalid
	}

	type placed struct {
		position int
		digit    int
	}
	var chunks []placed

	cursor := 0
	for cursor < len(body) {
		if cursor+c.symbolSize > len(body) {
			return 0, domain.ErrTokenInvalid
		}
		encodedDigit := body[cursor : cursor+c.symbolSize]
		cursor += c.symbolSize

		encodedValueColumn, ok := readField(body, &cursor)
		if !ok {
			return 0, domain.ErrTokenInvalid
		}
		encodedPosition, ok := readField(body, &cursor)
		if !ok {
			return 0, domain.ErrTokenInvalid
		}

		valueColumn, ok := c.reverse(encodedValueColumn, metaColumn)
		if !ok || valueColumn >= c.columns {
			return 0, domain.ErrTokenInvalid
		}
		digit, ok := c.byColumn[valueColumn][encodedDigit]
		if !ok {
			return 0, domain.ErrTokenInvalid
		}
		position, ok := c.reverse(encodedPosition, metaColumn)
		if !ok {
			return 0, domain.ErrTokenInvalid
		}

		chunks = append(chunks, placed{position: position, digit: digit})
	}
	if len(chunks) == 0 {
		return 0, domain.ErrTokenInvalid
	}

	// Reconstruct into an explicit array indexed by original position.
	// Ascending position order is the timestamp's digit order, whatever
	// order the chunks were emitted in. A duplicate, out-of-range, or
	// missing position means the token does not describe a permutation
	// and is rejected.
	digits := make([]byte, len(chunks))
	seen := make([]bool, len(chunks))
	for _, chunk := range chunks {
		if chunk.position < 0 || chunk.position >= len(digits) || seen[chunk.position] {
			return 0, domain.ErrTokenInvalid
		}
		seen[chunk.position] = true
		digits[chunk.position] = byte('0' + chunk.digit)
	}

	timestamp, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, domain.ErrTokenInvalid
	}
	return timestamp, nil
}

// readField consumes an ASCII decimal length prefix at *cursor followed
// by that many bytes, returning the field and advancing the cursor.
func readField(body string, cursor *int) (string, bool) {
	start := *cursor
	end := start
	for end < len(body) && body[end] >= '0' && body[end] <= '9' {
		end++
	}
	if end == start {
		return "", false
	}
	length, err := strconv.Atoi(body[start:end])
	if err != nil || length <= 0 || end+length > len(body) {
		return "", false
	}
	*cursor = end + length
	return body[end : end+length], true
}

// reverse maps a run of fixed-width symbols back to the number they
// substitute, using one column's reverse map.
func (c *Codec) reverse(field string, column int) (int, bool) {
	return c.reverseWith(field, c.byColumn[column])
}

// reverseAny is reverse over the any-column map. It is used only for
// the sauce, before the metadata column is known.
func (c *Codec) reverseAny(field string) (int, bool) {
	return c.reverseWith(field, c.anyColumn)
}

func (c *Codec) reverseWith(field string, index map[string]int) (int, bool) {
	if field == "" || len(field)%c.symbolSize != 0 {
		return 0, false
	}
	rendered := make([]byte, 0, len(field)/c.symbolSize)
	for at := 0; at < len(field); at += c.symbolSize {
		digit, ok := index[field[at:at+c.symbolSize]]
		if !ok {
			return 0, false
		}
		rendered = append(rendered, byte('0'+digit))
	}
	n, err := strconv.Atoi(string(rendered))
	if err != nil {
		return 0, false
	}
	return n, true
}
