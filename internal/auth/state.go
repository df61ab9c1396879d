package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// StateManager stores one-time OAuth state tokens for CSRF protection.
type StateManager struct {
	states map[string]stateEntry
	mutex  sync.Mutex
}

type stateEntry struct {
	createdAt time.Time
	provider  string
	userAgent string
}

var globalStateManager *StateManager

func init() {
	globalStateManager = NewStateManager()
	go globalStateManager.startCleanup()
}

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]stateEntry),
	}
}

func (sm *StateManager) GenerateState(provider, userAgent string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	state := base64.URLEncoding.EncodeToString(b)

	sm.mutex.Lock()
	sm.states[state] = stateEntry{
		createdAt: time.Now(),
		provider:  provider,
		userAgent: userAgent,
	}
	sm.mutex.Unlock()

	return state, nil
}

// ValidateState checks a state token and removes it; tokens are one-time use.
func (sm *StateManager) ValidateState(state, provider, userAgent string) error {
	logger := slog.With("component", "state_manager", "operation", "validate", "provider", provider)

	if state == "" {
		return fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	entry, exists := sm.states[state]
	if !exists {
		return fmt.Errorf("invalid or expired state token")
	}

	delete(sm.states, state)

	if time.Since(entry.createdAt) > stateTTL {
		return fmt.Errorf("state token has expired")
	}

	if entry.provider != provider {
		return fmt.Errorf("state token provider mismatch")
	}

	if entry.userAgent != userAgent {
		logger.Warn("State token user agent mismatch",
			"stored_user_agent", entry.userAgent,
			"received_user_agent", userAgent)
	}

	return nil
}

func (sm *StateManager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.cleanupExpiredStates()
	}
}

func (sm *StateManager) cleanupExpiredStates() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	now := time.Now()
	for state, entry := range sm.states {
		if now.Sub(entry.createdAt) > stateTTL {
			delete(sm.states, state)
		}
	}
}

func GenerateOAuthState(provider, userAgent string) (string, error) {
	return globalStateManager.GenerateState(provider, userAgent)
}

func ValidateOAuthState(state, provider, userAgent string) error {
	return globalStateManager.ValidateState(state, provider, userAgent)
}
