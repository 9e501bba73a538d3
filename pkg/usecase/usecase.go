package usecase

import (
	"sync"

	"github.com/abcbank/voxteller/pkg/agent"
	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/domain/types"
	"github.com/prometheus/client_golang/prometheus"
)

// UseCases wires the orchestration engine to its collaborators. One instance
// serves the whole process; per-session serialization happens inside.
type UseCases struct {
	repo        interfaces.Repository
	agent       *agent.Agent
	transcriber interfaces.Transcriber
	synthesizer interfaces.Synthesizer
	envKey      types.EnvKey
	metrics     *Metrics

	// sessionLocks serializes turns per session: at most one turn may be in
	// flight for a session at any time, and ledger appends for concurrent
	// stateless requests must not interleave.
	lockMu       sync.Mutex
	sessionLocks map[types.SessionID]*sync.Mutex
}

type Option func(*UseCases)

func WithTranscriber(t interfaces.Transcriber) Option {
	return func(uc *UseCases) {
		uc.transcriber = t
	}
}

func WithSynthesizer(s interfaces.Synthesizer) Option {
	return func(uc *UseCases) {
		uc.synthesizer = s
	}
}

func WithEnvKey(key types.EnvKey) Option {
	return func(uc *UseCases) {
		uc.envKey = key
	}
}

func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(uc *UseCases) {
		uc.metrics = NewMetrics(reg)
	}
}

func New(repo interfaces.Repository, agentEngine *agent.Agent, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		agent:        agentEngine,
		envKey:       types.DefaultEnvKey,
		sessionLocks: make(map[types.SessionID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.metrics == nil {
		uc.metrics = NewMetrics(nil)
	}
	return uc
}

// lockSession acquires the per-session serialization point and returns the
// release function.
func (uc *UseCases) lockSession(id types.SessionID) func() {
	uc.lockMu.Lock()
	lock, ok := uc.sessionLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		uc.sessionLocks[id] = lock
	}
	uc.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (uc *UseCases) forgetSessionLock(id types.SessionID) {
	uc.lockMu.Lock()
	delete(uc.sessionLocks, id)
	uc.lockMu.Unlock()
}
