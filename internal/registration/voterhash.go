package registration

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	id "votegate/pkg/domain"
)

const voterHashLen = 32

// DeriveVoterHash produces the anonymized voter identifier for one
// registration: HKDF-SHA256 over the registrant key and election ID, salted
// with a fresh random nonce. The hash is stable for the lifetime of the
// registration but cannot be reversed to the registrant, and the same person
// registering for two elections yields unrelated hashes.
func DeriveVoterHash(registrantKey string, electionID id.ElectionID) (id.VoterHash, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate voter hash salt: %w", err)
	}

	secret := []byte(registrantKey + "|" + electionID.String())
	reader := hkdf.New(sha256.New, secret, salt, []byte("votegate voter hash v1"))

	out := make([]byte, voterHashLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return "", fmt.Errorf("failed to derive voter hash: %w", err)
	}
	return id.VoterHash(hex.EncodeToString(out)), nil
}
