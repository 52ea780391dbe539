// Package encoding models per-frame facial landmark sequences and their
// on-disk text representation.
//
// A sequence logically has shape frames x 66 points x 2 coordinates. On disk
// it is a whitespace-delimited matrix with one row per frame and 132 columns,
// coordinates interleaved as x0 y0 x1 y1 ... x65 y65. The codec guarantees an
// exact round-trip: every float64 written by Write is reproduced bit-for-bit
// by Read.
package encoding
