// Package heightfield owns the reconstructed elevation grid of one green.
//
// Responsibilities: the immutable Heightfield value with an explicit
// validity flag per cell, the artifact codec (JSON metadata plus a raw
// little-endian float32 grid using NaN for masked cells), and the Store
// that persists artifact pairs through fsutil.
//
// NaN exists only on the wire. Decoding turns it into an invalid cell, so
// no consumer ever compares against NaN.
package heightfield
