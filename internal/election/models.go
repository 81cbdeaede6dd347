// Package election implements the election directory: definitions, lifecycle
// and the voting-window rules every other subsystem consults.
package election

import (
	"time"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// Status is the election lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// IsValid reports whether the status is a known lifecycle state.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusActive || s == StatusCompleted
}

// Candidate is one entry on an election's ballot. The ID is unique within
// the election only.
type Candidate struct {
	ID          id.CandidateID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	LogoRef     string         `json:"logo_ref,omitempty"`
}

// Election is an election definition. The candidate slice is ordered; that
// order is the deterministic tie-break used by the tally engine.
type Election struct {
	ID             id.ElectionID `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Candidates     []Candidate   `json:"candidates"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	ExpectedVoters int           `json:"expected_voters"`
	Status         Status        `json:"status"`
	CreatedBy      id.AdminID    `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Validate checks the structural invariants of an election definition.
func (e Election) Validate() error {
	if e.Title == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if len(e.Candidates) < 2 {
		return dErrors.New(dErrors.CodeInvalidInput, "an election needs at least two candidates")
	}
	seen := make(map[id.CandidateID]struct{}, len(e.Candidates))
	for _, c := range e.Candidates {
		if c.ID == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "candidate id is required")
		}
		if c.Name == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "candidate %s has no name", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return dErrors.Newf(dErrors.CodeInvalidInput, "duplicate candidate id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	if !e.EndTime.After(e.StartTime) {
		return dErrors.New(dErrors.CodeInvalidInput, "end time must be after start time")
	}
	if e.ExpectedVoters <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "expected voter count must be positive")
	}
	if !e.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", e.Status)
	}
	return nil
}

// HasCandidate reports whether candidateID is on this election's ballot.
func (e Election) HasCandidate(candidateID id.CandidateID) bool {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}

// VotingOpen reports whether a vote may be cast at the given instant.
// The window is half-open: [StartTime, EndTime).
func (e Election) VotingOpen(now time.Time) bool {
	return e.Status == StatusActive && !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// ResultsAvailable reports whether tallied results may be released.
// Results open exactly at EndTime.
func (e Election) ResultsAvailable(now time.Time) bool {
	return !now.Before(e.EndTime)
}
