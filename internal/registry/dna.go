package registry

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// DefaultDigits is the attribute magnitude used when the config does not
// override it: DNA values occupy [0, 10^16).
const DefaultDigits = 16

// MaxDigits caps the modulus at 10^18 so every DNA fits in a signed
// 64-bit integer, uint64 in memory and BIGINT in the entity store alike.
const MaxDigits = 18

// deriveDNA hashes the seed with Keccak-256, interprets the full 256-bit
// digest as a big-endian unsigned integer, and reduces it mod modulus.
// Pure: same (seed, modulus) always yields the same value.
func deriveDNA(seed string, modulus *big.Int) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(seed))
	n := new(big.Int).SetBytes(h.Sum(nil))
	return n.Mod(n, modulus).Uint64()
}

// pow10 returns 10^digits. Caller guarantees 1 <= digits <= MaxDigits.
func pow10(digits int) uint64 {
	v := uint64(1)
	for i := 0; i < digits; i++ {
		v *= 10
	}
	return v
}
