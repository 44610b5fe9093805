package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for snapshot fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainMenu   = "moacafe/menu/v1"
	DomainOrders = "moacafe/orders/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the domain-separated hash of v's canonical JSON.
// Equal fingerprints mean equal content regardless of key order.
func Fingerprint(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// SameContent reports whether a and b have identical canonical JSON.
// Values that cannot be encoded are never considered equal.
func SameContent(domain string, a, b any) bool {
	fa, err := Fingerprint(domain, a)
	if err != nil {
		return false
	}
	fb, err := Fingerprint(domain, b)
	if err != nil {
		return false
	}
	return fa == fb
}
