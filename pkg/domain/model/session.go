package model

import (
	"time"

	"github.com/abcbank/voxteller/pkg/domain/types"
)

// Session is the lifetime of one call, from start to end. It carries the
// verification state and is owned by the orchestration engine for the
// duration of the call; the repository only stores snapshots.
type Session struct {
	ID     types.SessionID `json:"id" firestore:"ID"`
	EnvKey types.EnvKey    `json:"env_key" firestore:"EnvKey"`

	// CustomerID is bound by a successful verify-identity call and is empty
	// until then.
	CustomerID types.CustomerID `json:"customer_id,omitempty" firestore:"CustomerID,omitempty"`
	Verified   bool             `json:"verified" firestore:"Verified"`

	// VerificationAttempts counts failed verify-identity calls. There is no
	// lockout; the counter exists for the session record only.
	VerificationAttempts int `json:"verification_attempts" firestore:"VerificationAttempts"`

	Flow      types.Flow `json:"flow,omitempty" firestore:"Flow,omitempty"`
	StartedAt time.Time  `json:"started_at" firestore:"StartedAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"UpdatedAt"`
	Ended     bool       `json:"ended" firestore:"Ended"`
	EndedAt   time.Time  `json:"ended_at,omitempty" firestore:"EndedAt,omitempty"`
}

// NewSession creates a session for a starting call
func NewSession(envKey types.EnvKey) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        types.NewSessionID(),
		EnvKey:    envKey,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Verify marks the session verified and binds the customer. A later
// successful verification refreshes the binding; nothing ever un-verifies a
// session mid-call.
func (s *Session) Verify(customerID types.CustomerID) {
	s.Verified = true
	s.CustomerID = customerID
	s.UpdatedAt = time.Now().UTC()
}

// RecordFailedVerification counts a failed attempt without touching the
// verification state.
func (s *Session) RecordFailedVerification() {
	s.VerificationAttempts++
	s.UpdatedAt = time.Now().UTC()
}

// End marks the session ended
func (s *Session) End() {
	now := time.Now().UTC()
	s.Ended = true
	s.EndedAt = now
	s.UpdatedAt = now
}
