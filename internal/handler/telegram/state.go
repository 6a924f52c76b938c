package telegram

import (
	"sync"
	"time"
)

const (
	stateTTL      = 30 * time.Minute
	sweepInterval = 5 * time.Minute
)

// Step is the position of a user in a conversation flow
type Step int

const (
	StepNone Step = iota
	StepInputDomain
	StepSelectType
	StepInputValue
	StepInputTTL
	StepConfirmCreate
	StepEditValue
)

// Wizard data keys
const (
	keyDomain   = "domain"
	keyType     = "type"
	keyValue    = "value"
	keyTTL      = "ttl"
	keyRecordID = "record_id"
)

// UserState is the conversation state of one Telegram user
type UserState struct {
	UserID      int64
	CurrentStep Step
	Data        map[string]any
	LastUpdated time.Time
}

// StateManager keeps per-user conversation state and expires idle entries
type StateManager struct {
	states map[int64]*UserState
	mu     sync.Mutex
	now    func() time.Time
	done   chan struct{}
	once   sync.Once
}

// NewStateManager creates a state manager and starts its sweeper
func NewStateManager() *StateManager {
	sm := newStateManager(time.Now)
	go sm.sweepLoop()
	return sm
}

func newStateManager(now func() time.Time) *StateManager {
	return &StateManager{
		states: make(map[int64]*UserState),
		now:    now,
		done:   make(chan struct{}),
	}
}

// state returns the user's state, creating it. Callers hold mu.
func (sm *StateManager) state(userID int64) *UserState {
	if st, ok := sm.states[userID]; ok {
		st.LastUpdated = sm.now()
		return st
	}
	st := &UserState{
		UserID:      userID,
		CurrentStep: StepNone,
		Data:        make(map[string]any),
		LastUpdated: sm.now(),
	}
	sm.states[userID] = st
	return st
}

// SetStep sets the current step for a user
func (sm *StateManager) SetStep(userID int64, step Step) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state(userID).CurrentStep = step
}

// CurrentStep gets the current step for a user
func (sm *StateManager) CurrentStep(userID int64) Step {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state(userID).CurrentStep
}

// SetData stores a wizard value
func (sm *StateManager) SetData(userID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state(userID).Data[key] = value
}

// String returns a stored string, or ""
func (sm *StateManager) String(userID int64, key string) string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	v, _ := sm.state(userID).Data[key].(string)
	return v
}

// Int returns a stored int, or 0
func (sm *StateManager) Int(userID int64, key string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	v, _ := sm.state(userID).Data[key].(int)
	return v
}

// ClearState forgets a user's conversation
func (sm *StateManager) ClearState(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.states, userID)
}

// Stop ends the sweeper
func (sm *StateManager) Stop() {
	sm.once.Do(func() { close(sm.done) })
}

func (sm *StateManager) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
			sm.sweep()
		}
	}
}

// sweep removes states idle for longer than stateTTL
func (sm *StateManager) sweep() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := sm.now()
	for userID, st := range sm.states {
		if now.Sub(st.LastUpdated) > stateTTL {
			delete(sm.states, userID)
		}
	}
}
