package service

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	txidAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	digitAlphabet = "0123456789"

	txidLength        = 32
	nossoNumeroLength = 11
)

// GenerateTxID produces the client-side PIX charge identifier: 32
// alphanumeric characters from a cryptographically strong source. It
// doubles as the idempotency key toward the provider, so it must never
// come from a predictable counter.
func GenerateTxID() string {
	return randomString(txidAlphabet, txidLength)
}

// GenerateNossoNumero produces the 11-digit boleto identifier, same
// randomness requirements as GenerateTxID.
func GenerateNossoNumero() string {
	return randomString(digitAlphabet, nossoNumeroLength)
}

// randomString samples characters uniformly via rejection sampling so
// the modulo never biases the distribution.
func randomString(alphabet string, length int) string {
	n := len(alphabet)
	// Largest multiple of n that fits in a byte.
	max := byte(256 - 256%n)

	var sb strings.Builder
	sb.Grow(length)

	buf := make([]byte, length*2)
	for sb.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		for _, b := range buf {
			if b >= max && max != 0 {
				continue
			}
			sb.WriteByte(alphabet[int(b)%n])
			if sb.Len() == length {
				break
			}
		}
	}
	return sb.String()
}

// FormatAmount renders a charge amount as the fixed two-decimal string
// the provider's decimal contract requires. Rounding follows the
// binary value of the float (0.005 carries up to "0.01"); amounts are
// never sent as binary floats.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// DigitsOnly strips everything but 0-9, used for payer documents and
// postal codes before transmission.
func DigitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
