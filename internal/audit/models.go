// Package audit records the append-only trail of election-flow actions.
// Every accepted or rejected operation leaves an event naming the invariant
// that decided it, which is what makes the voting flow auditable.
package audit

import "time"

// Category classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// registrations, cast votes, election lifecycle changes.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers events relevant to monitoring and forensics:
	// failed verifications, rejected duplicate votes, admin login attempts.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations Category = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   Category  `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Actor      string    `json:"actor,omitempty"`       // admin ID or voter hash; never a raw identity
	Subject    string    `json:"subject,omitempty"`     // e.g. SHA-256 of a document number
	ElectionID string    `json:"election_id,omitempty"`
	Decision   string    `json:"decision,omitempty"` // accepted | rejected
	Reason     string    `json:"reason,omitempty"`   // invariant that drove the decision
	RequestID  string    `json:"request_id,omitempty"`
}

// Action names an auditable occurrence.
type Action string

const (
	// Verification events
	ActionVerificationSucceeded Action = "verification_succeeded"
	ActionVerificationFailed    Action = "verification_failed"

	// Registration events
	ActionRegistrationCreated  Action = "registration_created"
	ActionRegistrationRejected Action = "registration_rejected"

	// Vote events
	ActionVoteCast     Action = "vote_cast"
	ActionVoteRejected Action = "vote_rejected"

	// Election lifecycle events
	ActionElectionCreated   Action = "election_created"
	ActionElectionUpdated   Action = "election_updated"
	ActionElectionActivated Action = "election_activated"
	ActionElectionDeleted   Action = "election_deleted"

	// Results events
	ActionResultsComputed Action = "results_computed"
	ActionResultsExported Action = "results_exported"

	// Admin events
	ActionAdminLoginSucceeded Action = "admin_login_succeeded"
	ActionAdminLoginFailed    Action = "admin_login_failed"
)

// categories maps each action to its category. Unknown actions default to
// operations in CategoryOf.
var categories = map[Action]Category{
	ActionVerificationSucceeded: CategoryOperations,
	ActionVerificationFailed:    CategorySecurity,
	ActionRegistrationCreated:   CategoryCompliance,
	ActionRegistrationRejected:  CategorySecurity,
	ActionVoteCast:              CategoryCompliance,
	ActionVoteRejected:          CategorySecurity,
	ActionElectionCreated:       CategoryCompliance,
	ActionElectionUpdated:       CategoryCompliance,
	ActionElectionActivated:     CategoryCompliance,
	ActionElectionDeleted:       CategoryCompliance,
	ActionResultsComputed:       CategoryOperations,
	ActionResultsExported:       CategoryCompliance,
	ActionAdminLoginSucceeded:   CategorySecurity,
	ActionAdminLoginFailed:      CategorySecurity,
}

// CategoryOf returns the routing category for an action.
func CategoryOf(action Action) Category {
	if c, ok := categories[action]; ok {
		return c
	}
	return CategoryOperations
}
