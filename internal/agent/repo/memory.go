package repo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
)

type memorySession struct {
	state     *model.TurnState
	expiresAt time.Time
}

// MemorySessionStore is the in-process session store used when Redis is not
// configured. Entries expire ttl after their last save.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (m *MemorySessionStore) Load(_ context.Context, conversationID string) (*model.TurnState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[conversationID]
	if !ok {
		return nil, false, nil
	}
	if m.expired(s) {
		delete(m.sessions, conversationID)
		return nil, false, nil
	}
	state, err := s.state.Clone()
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func (m *MemorySessionStore) Save(_ context.Context, state *model.TurnState) error {
	if state == nil || state.ConversationID == "" {
		return errors.New("save session: missing conversation id")
	}
	cp, err := state.Clone()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := memorySession{state: cp}
	if m.ttl > 0 {
		s.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions[state.ConversationID] = s
	m.sweepLocked()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
	return nil
}

func (m *MemorySessionStore) expired(s memorySession) bool {
	return !s.expiresAt.IsZero() && !m.now().Before(s.expiresAt)
}

func (m *MemorySessionStore) sweepLocked() {
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
		}
	}
}

type memoryCallLog struct {
	calls     []model.APICall
	expiresAt time.Time
}

// MemoryAPICallLogRepository keeps API call logs in process memory. A log
// expires ttl after its last append.
type MemoryAPICallLogRepository struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	logs map[string]memoryCallLog
}

func NewMemoryAPICallLogRepository(ttl time.Duration) *MemoryAPICallLogRepository {
	return &MemoryAPICallLogRepository{
		ttl:  ttl,
		now:  time.Now,
		logs: make(map[string]memoryCallLog),
	}
}

func (m *MemoryAPICallLogRepository) Append(_ context.Context, conversationID string, call model.APICall) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.logs[conversationID]
	if m.expired(l) {
		l = memoryCallLog{}
	}
	l.calls = append(l.calls, call)
	if m.ttl > 0 {
		l.expiresAt = m.now().Add(m.ttl)
	}
	m.logs[conversationID] = l
	m.sweepLocked()
	return nil
}

func (m *MemoryAPICallLogRepository) List(_ context.Context, conversationID string) ([]model.APICall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.logs[conversationID]
	if !ok || m.expired(l) {
		delete(m.logs, conversationID)
		return []model.APICall{}, nil
	}
	out := make([]model.APICall, len(l.calls))
	copy(out, l.calls)
	return out, nil
}

func (m *MemoryAPICallLogRepository) Clear(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, conversationID)
	return nil
}

func (m *MemoryAPICallLogRepository) expired(l memoryCallLog) bool {
	return !l.expiresAt.IsZero() && !m.now().Before(l.expiresAt)
}

func (m *MemoryAPICallLogRepository) sweepLocked() {
	for id, l := range m.logs {
		if m.expired(l) {
			delete(m.logs, id)
		}
	}
}

var (
	_ model.SessionStore         = (*MemorySessionStore)(nil)
	_ model.APICallLogRepository = (*MemoryAPICallLogRepository)(nil)
)
