package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber produces a human-readable order number: a two-letter
// prefix followed by six random uppercase alphanumerics, e.g. "BRX7K2N9".
// Uniqueness is enforced by the database index; callers retry on collision.
func GenerateOrderNumber(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to
		// a timestamp suffix so order creation still proceeds.
		return fmt.Sprintf("%s%06d", prefix, time.Now().UnixNano()%1000000)
	}
	for i := range b {
		b[i] = orderNumberAlphabet[int(b[i])%len(orderNumberAlphabet)]
	}
	return prefix + string(b)
}
