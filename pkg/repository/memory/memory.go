package memory

import (
	"github.com/abcbank/voxteller/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend, used for development and
// tests.
type Memory struct {
	session *sessionRepository
	turn    *turnRepository
	config  *configRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		session: newSessionRepository(),
		turn:    newTurnRepository(),
		config:  newConfigRepository(),
	}
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Turn() interfaces.TurnRepository {
	return m.turn
}

func (m *Memory) Config() interfaces.ConfigRepository {
	return m.config
}

func (m *Memory) Close() error {
	return nil
}
