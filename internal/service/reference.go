package service

import (
	"fmt"
	"math/rand"
	"time"
)

// Reference number prefixes by origin.
const (
	refPrefixCredit     = "TXN"
	refPrefixWithdrawal = "WTH"
	refPrefixAdjustment = "ADJ"
	refPrefixRefund     = "RFD"
)

// newReferenceNumber builds a display reference: prefix, millisecond
// timestamp, random suffix. Not a uniqueness guarantee on its own; the
// store carries a unique index and idempotency is handled separately.
func newReferenceNumber(prefix string) string {
	return fmt.Sprintf("%s%d%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}

const confirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newConfirmationCode returns an 8-character uppercase alphanumeric
// code. Collisions are caught by the store's unique index and retried
// by the caller.
func newConfirmationCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = confirmationCodeAlphabet[rand.Intn(len(confirmationCodeAlphabet))]
	}
	return string(b)
}
