package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModel = "cmdb/model/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Canonical returns the canonical JSON of a model. It decodes back into a
// Spec with encoding/json.
func Canonical(s *Spec) ([]byte, error) {
	return MarshalCanonical(s.canonicalMap())
}

// Hash computes the content-addressed identity of a model.
// Two specs that differ only in an unset vs. default safety factor hash equally.
func Hash(s *Spec) (string, error) {
	canonical, err := Canonical(s)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when inputs are known to be finite.
func MustHash(s *Spec) string {
	h, err := Hash(s)
	if err != nil {
		panic(err)
	}
	return h
}
