package build

import (
	"crypto/rand"
	"math/big"
)

// HashLength is the length of the per-build hash.
const HashLength = 10

const hashAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomHash returns n random base36 characters.
func RandomHash(n int) (string, error) {
	size := big.NewInt(int64(len(hashAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = hashAlphabet[v.Int64()]
	}
	return string(b), nil
}
