package ballot

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	id "votegate/pkg/domain"
)

// Sealer encrypts ballots under per-vote data keys derived from a single
// escrowed master key. Unsealing any one ballot needs the master key plus
// that ballot's vote ID, so a leaked data key exposes one ballot only.
type Sealer struct {
	master []byte
}

// NewSealer parses the hex-encoded 32-byte master key.
func NewSealer(masterKeyHex string) (*Sealer, error) {
	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Sealer{master: key}, nil
}

// SealedBallot is the encrypted envelope stored in the ledger.
type SealedBallot struct {
	Ciphertext   []byte
	Nonce        []byte
	IntegrityTag string
}

// Seal encrypts the candidate choice for one vote. The vote ID binds the
// derived key and is authenticated as associated data.
func (s *Sealer) Seal(voteID id.VoteID, candidateID id.CandidateID) (SealedBallot, error) {
	aead, err := s.aeadFor(voteID)
	if err != nil {
		return SealedBallot{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return SealedBallot{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(candidateID), []byte(voteID.String()))
	tag := sha256.Sum256(ciphertext)

	return SealedBallot{
		Ciphertext:   ciphertext,
		Nonce:        nonce,
		IntegrityTag: hex.EncodeToString(tag[:]),
	}, nil
}

// Open decrypts a sealed ballot back to its candidate choice. Used only for
// audited recovery; normal tallies never unseal.
func (s *Sealer) Open(vote Vote) (id.CandidateID, error) {
	tag := sha256.Sum256(vote.Ciphertext)
	if hex.EncodeToString(tag[:]) != vote.IntegrityTag {
		return "", fmt.Errorf("integrity tag mismatch for vote %s", vote.ID)
	}

	aead, err := s.aeadFor(vote.ID)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, vote.Nonce, vote.Ciphertext, []byte(vote.ID.String()))
	if err != nil {
		return "", fmt.Errorf("failed to unseal ballot: %w", err)
	}
	return id.CandidateID(plaintext), nil
}

func (s *Sealer) aeadFor(voteID id.VoteID) (cipher.AEAD, error) {
	reader := hkdf.New(sha256.New, s.master, []byte(voteID.String()), []byte("votegate ballot key v1"))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive ballot key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}
	return aead, nil
}
