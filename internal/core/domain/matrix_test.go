package domain

import (
	"errors"
	"testing"
)

func validMatrix() Matrix {
	m := make(Matrix, 10)
	for d := 0; d < 10; d++ {
		row := make([]string, 3)
		for c := 0; c < 3; c++ {
			row[c] = string(rune('a'+d)) + string(rune('A'+c))
		}
		m[DigitKeys[d:d+1]] = row
	}
	return m
}

func TestMatrix_Validate(t *testing.T) {
	if err := validMatrix().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestMatrix_Validate_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Matrix)
	}{
		{"nil row", func(m Matrix) { m["3"] = nil }},
		{"missing digit", func(m Matrix) { delete(m, "0") }},
		{"non-digit key", func(m Matrix) { m["a"] = m["1"] }},
		{"short row", func(m Matrix) { m["8"] = m["8"][:1] }},
		{"long symbol", func(m Matrix) { m["5"][2] = "xyz" }},
		{"empty symbol", func(m Matrix) { m["6"][0] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMatrix()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, ErrMatrixMalformed) {
				t.Errorf("Validate() error = %v, want ErrMatrixMalformed", err)
			}
		})
	}
}

func TestMatrix_Dimensions(t *testing.T) {
	m := validMatrix()
	if got := m.Columns(); got != 3 {
		t.Errorf("Columns() = %d, want 3", got)
	}
	if got := m.SymbolSize(); got != 2 {
		t.Errorf("SymbolSize() = %d, want 2", got)
	}

	var empty Matrix
	if got := empty.Columns(); got != 0 {
		t.Errorf("Columns() on empty matrix = %d, want 0", got)
	}
	if got := empty.SymbolSize(); got != 0 {
		t.Errorf("SymbolSize() on empty matrix = %d, want 0", got)
	}
}

func TestMatrix_Clone(t *testing.T) {
	m := validMatrix()
	clone := m.Clone()

	clone["0"][0] = "zz"
	if m["0"][0] == "zz" {
		t.Error("Clone() shares symbol storage with the original")
	}
}
