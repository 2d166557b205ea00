// Package domain defines the core domain models for TimeCloak.
package domain

import "strconv"

// DigitKeys are the ten keys every matrix must define.
const DigitKeys = "0123456789"

// Matrix is the shared secret substitution table. It maps each decimal
// digit ("0"–"9") to an ordered list of substitution symbols, one per
// column.
//
// Structural invariants (checked by Validate):
//   - every digit 0–9 is present
//   - all ten symbol lists have the same length (the column count)
//   - every symbol has the same length (the symbol size)
//
// A well-configured matrix additionally guarantees global symbol
// uniqueness and keeps symbols disjoint from ASCII digits and from the
// token separator. Those are configuration-time assumptions validated by
// the server config layer, not here: reverse lookup is built
// first-writer-wins, so a duplicate symbol silently resolves to the
// first digit that claimed it.
//
// A matrix is immutable for the process lifetime. Changing it requires
// rebuilding the codec (and invalidates every outstanding token).
type Matrix map[string][]string

// Columns returns the number of substitution columns, or 0 for a matrix
// that fails validation.
func (m Matrix) Columns() int {
	row, ok := m["0"]
	if !ok {
		return 0
	}
	return len(row)
}

// SymbolSize returns the uniform symbol length, or 0 for a matrix that
// fails validation.
func (m Matrix) SymbolSize() int {
	row, ok := m["0"]
	if !ok || len(row) == 0 {
		return 0
	}
	return len(row[0])
}

// Validate checks the structural invariants. It returns
// ErrMatrixMalformed with details on the first violation found.
func (m Matrix) Validate() error {
	if len(m) != len(DigitKeys) {
		return ErrMatrixMalformed.WithDetails("matrix must define exactly the ten decimal digits, got " + strconv.Itoa(len(m)) + " entries")
	}

	columns := -1
	symbolSize := -1
	for i := 0; i < len(DigitKeys); i++ {
		digit := DigitKeys[i : i+1]
		row, ok := m[digit]
		if !ok {
			return ErrMatrixMalformed.WithDetails("missing digit " + digit)
		}
		if len(row) == 0 {
			return ErrMatrixMalformed.WithDetails("digit " + digit + " has no symbols")
		}
		if columns == -1 {
			columns = len(row)
		} else if len(row) != columns {
			return ErrMatrixMalformed.WithDetails("digit " + digit + " has " + strconv.Itoa(len(row)) + " symbols, want " + strconv.Itoa(columns))
		}
		for col, symbol := range row {
			if symbol == "" {
				return ErrMatrixMalformed.WithDetails("digit " + digit + " column " + strconv.Itoa(col) + " has an empty symbol")
			}
			if symbolSize == -1 {
				symbolSize = len(symbol)
			} else if len(symbol) != symbolSize {
				return ErrMatrixMalformed.WithDetails("digit " + digit + " column " + strconv.Itoa(col) + " symbol length " + strconv.Itoa(len(symbol)) + ", want " + strconv.Itoa(symbolSize))
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	clone := make(Matrix, len(m))
	for digit, row := range m {
		symbols := make([]string, len(row))
		copy(symbols, row)
		clone[digit] = symbols
	}
	return clone
}
