package identity

import (
	"fmt"

	id "votegate/pkg/domain"
)

// RegistrantStatus is the eligibility state carried by the registry.
type RegistrantStatus string

const (
	StatusVerified    RegistrantStatus = "verified"
	StatusNotVerified RegistrantStatus = "not_verified"
)

// Registrant is a read-only registry record for one eligible voter.
type Registrant struct {
	DocumentType   id.DocumentType   `json:"document_type"`
	DocumentNumber id.DocumentNumber `json:"document_number"`
	FullName       string            `json:"full_name"`
	PhotoRef       string            `json:"photo_ref"`
	Status         RegistrantStatus  `json:"status"`
}

// Key returns the stable registrant identifier used by the registration
// ledger: document numbers are only unique within their document type.
func (r Registrant) Key() string {
	return fmt.Sprintf("%s:%s", r.DocumentType, r.DocumentNumber)
}

// Outcome is the result of a successful verification.
type Outcome struct {
	Registrant Registrant
	FaceScore  float64
}
