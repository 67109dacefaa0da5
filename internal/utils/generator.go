// Package utils provides small helpers for generating the public
// identifiers used by the booking engine: booking references shown to
// guests and payment link tokens handed to the payment page.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// referenceAlphabet is the 36 symbol alphabet booking references are
// drawn from.  References are public, so the alphabet avoids lowercase
// to keep them easy to read aloud.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// referenceLength is the number of symbols in a booking reference.
const referenceLength = 10

// BookingReference returns a new random 10 character booking reference.
// Callers must check the result against existing references and retry on
// collision; the generator itself gives no uniqueness guarantee.
func BookingReference() (string, error) {
	buf := make([]byte, referenceLength)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// PaymentToken returns a cryptographically unpredictable hex token for a
// payment link.  32 random bytes yield a 64 character string.  As with
// references, callers collision-check against stored tokens before use.
func PaymentToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
