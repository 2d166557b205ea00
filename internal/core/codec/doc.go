// Package codec implements the TimeCloak token engine: a randomized,
// position-preserving digit substitution over a shared secret matrix.
//
// Token Format:
//
//	<sauce><separator><chunk>...
//
// where each chunk is
//
//	<digit symbol><length><value-column symbols><length><position symbols>
//
// The digit symbol is fixed width (the matrix symbol size); the two
// lengths are inline ASCII decimal prefixes that make each chunk
// self-delimiting, so no record separator is needed between chunks.
// The sauce encodes the metadata column (the single column used to
// substitute every chunk's value-column and position fields) by
// substituting its own decimal digits against itself.
//
// Encoding the same timestamp twice yields different tokens with
// overwhelming probability: the digit emission order is shuffled and
// both the metadata column and each digit's value column are drawn at
// random. None of this is cryptography. An attacker holding the matrix
// can forge arbitrary tokens; the scheme only makes tokens hard to
// guess without it.
//
// Decoding reverses the substitution deterministically and reports
// every failure (bad separator, unknown symbol, bad length prefix,
// parse failure) as the single uniform invalid-token error, so a
// caller probing the decoder learns nothing about why a guess failed.
package codec
