package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Float32sToBytes encodes float32 values as consecutive little-endian words for GPU upload.
//
// Parameters:
//   - values: the floats to encode
//
// Returns:
//   - []byte: 4*len(values) bytes
func Float32sToBytes(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Uint32sToBytes encodes uint32 values as consecutive little-endian words for GPU upload.
//
// Parameters:
//   - values: the integers to encode
//
// Returns:
//   - []byte: 4*len(values) bytes
func Uint32sToBytes(values ...uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
