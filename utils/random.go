package utils

import (
	"crypto/rand"
	"math/big"
)

const billNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns an uppercase alphanumeric string, used as the
// suffix of bill numbers
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(billNumberCharset))))
		if err != nil {
			b[i] = billNumberCharset[0]
			continue
		}
		b[i] = billNumberCharset[n.Int64()]
	}
	return string(b)
}
