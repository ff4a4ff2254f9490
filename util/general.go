package util

import "math/rand"

// codeAlphabet deliberately excludes lowercase: join codes are shown to
// players and matched case-insensitively, so they are stored uppercase.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random uppercase-alphanumeric code of length n.
func GenerateCode(n int) string {
	b := make([]byte, n)

	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}

	return string(b)
}
