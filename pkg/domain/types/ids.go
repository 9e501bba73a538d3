package types

import "github.com/google/uuid"

// SessionID identifies one call from start to end
type SessionID string

// NewSessionID issues a new time-ordered session ID
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the SessionID
func (s SessionID) String() string {
	return string(s)
}

// CustomerID identifies a customer in the banking dataset
type CustomerID string

// String returns the string representation of the CustomerID
func (c CustomerID) String() string {
	return string(c)
}

// EnvKey selects an environment-scoped agent configuration
type EnvKey string

// DefaultEnvKey is used when no environment is specified
const DefaultEnvKey EnvKey = "dev"

// String returns the string representation of the EnvKey
func (e EnvKey) String() string {
	return string(e)
}
