// utils/strings.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const randomChars = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"

// GenerateRandomString returns an uppercase alphanumeric string used
// as the random suffix of sale and purchase numbers.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomChars))))
		if err != nil {
			panic("failed to read random bytes")
		}
		b[i] = randomChars[n.Int64()]
	}
	return string(b)
}
