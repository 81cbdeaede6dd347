// Package domain holds the typed identifiers shared across votegate services.
//
// IDs are distinct named types so the compiler rejects cross-type assignment:
// an ElectionID can never be passed where a VoteID is expected. UUID-backed
// IDs are validated at trust boundaries with the ParseXxxID helpers; opaque
// external identifiers (document numbers, candidate IDs, voter hashes) remain
// string-backed because their format is owned by someone else.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "votegate/pkg/domain-errors"
)

// UUID-backed identifiers minted by this system.
type (
	ElectionID     uuid.UUID
	RegistrationID uuid.UUID
	VoteID         uuid.UUID
	AdminID        uuid.UUID
)

// String-backed identifiers owned by external systems or derived values.
type (
	// CandidateID is unique within its election only.
	CandidateID string

	// DocumentNumber is the registrant's identity-document number as issued
	// by the external registry (e.g. a national ID number).
	DocumentNumber string

	// VoterHash is the pseudonymous voter identifier recorded on votes so the
	// ledger never references a registrant directly.
	VoterHash string
)

// DocumentType scopes a DocumentNumber lookup in the identity registry.
type DocumentType string

const (
	DocumentTypePrimary   DocumentType = "primary-id"
	DocumentTypeSecondary DocumentType = "secondary-id"
)

// IsValid reports whether the document type is one of the supported kinds.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypePrimary || t == DocumentTypeSecondary
}

func (t DocumentType) String() string { return string(t) }

func NewElectionID() ElectionID         { return ElectionID(uuid.New()) }
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }
func NewVoteID() VoteID                 { return VoteID(uuid.New()) }
func NewAdminID() AdminID               { return AdminID(uuid.New()) }

func (id ElectionID) String() string     { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id VoteID) String() string         { return uuid.UUID(id).String() }
func (id AdminID) String() string        { return uuid.UUID(id).String() }

func (id ElectionID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VoteID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id AdminID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// ParseElectionID validates and converts a string into an ElectionID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseElectionID(s string) (ElectionID, error) {
	u, err := parseUUID(s, "election_id")
	return ElectionID(u), err
}

// ParseRegistrationID validates and converts a string into a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration_id")
	return RegistrationID(u), err
}

// ParseVoteID validates and converts a string into a VoteID.
func ParseVoteID(s string) (VoteID, error) {
	u, err := parseUUID(s, "vote_id")
	return VoteID(u), err
}

// ParseAdminID validates and converts a string into an AdminID.
func ParseAdminID(s string) (AdminID, error) {
	u, err := parseUUID(s, "admin_id")
	return AdminID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the nil UUID")
	}
	return u, nil
}
