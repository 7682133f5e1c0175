package sdruntime

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed returns a non-negative random seed drawn from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 42
	}
	// Drop the top bit so the value fits a non-negative int64.
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// ResolveSeed returns seed when it is non-negative and a fresh RandomSeed
// when it is negative (the "random" convention used by GenerateParams).
func ResolveSeed(seed int64) int64 {
	if seed >= 0 {
		return seed
	}
	return RandomSeed()
}
