package state

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// Scope identifies where a value lives and how long it stays visible.
type Scope string

const (
	// ScopeRound values are visible only within the round that wrote
	// them; advancing the round shadows them.
	ScopeRound Scope = "round"

	// ScopeGlobal values persist for the whole session (config,
	// derived session facts).
	ScopeGlobal Scope = "global"

	// ScopeExecution covers the run-control variables: current_round
	// and last_completed_step.
	ScopeExecution Scope = "execution"
)

// Execution-scope keys.
const (
	KeyCurrentRound      = "current_round"
	KeyLastCompletedStep = "last_completed_step"
)

// Store is the scoped key/value state shared between stages. Keys may
// use dot notation for nested access (e.g. "pr_urls.worker1"). Writes
// are serialized; the design assumes one authoritative writer per
// round for any given key.
type Store struct {
	mu                sync.RWMutex
	rounds            map[string]map[string]any
	global            map[string]any
	currentRound      int
	lastCompletedStep string
}

// NewStore creates an empty store positioned at round 1.
func NewStore() *Store {
	return &Store{
		rounds:       make(map[string]map[string]any),
		global:       make(map[string]any),
		currentRound: 1,
	}
}

// Get looks a key up in priority order: current round state, then
// global state, then the execution variables.
func (s *Store) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := strings.Split(key, ".")

	if round, ok := s.rounds[strconv.Itoa(s.currentRound)]; ok {
		if v, ok := lookup(round, parts); ok {
			return v, nil
		}
	}

	if v, ok := lookup(s.global, parts); ok {
		return v, nil
	}

	switch key {
	case KeyCurrentRound:
		return s.currentRound, nil
	case KeyLastCompletedStep:
		return s.lastCompletedStep, nil
	}

	return nil, errors.New(errors.ErrCodeStateKeyNotFound,
		fmt.Sprintf("key %q not found in any scope", key))
}

// GetString returns a string value for key, or "" when absent or not
// a string.
func (s *Store) GetString(key string) string {
	v, err := s.Get(key)
	if err != nil {
		return ""
	}
	str, _ := v.(string)
	return str
}

// Lookup is Get without the error, for callers that treat absence as
// a skip condition.
func (s *Store) Lookup(key string) (any, bool) {
	v, err := s.Get(key)
	return v, err == nil
}

// Set stores a value under the given scope, creating nested maps for
// dotted keys as needed.
func (s *Store) Set(key string, value any, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(key, ".")

	switch scope {
	case ScopeRound:
		roundKey := strconv.Itoa(s.currentRound)
		if _, ok := s.rounds[roundKey]; !ok {
			s.rounds[roundKey] = make(map[string]any)
		}
		assign(s.rounds[roundKey], parts, value)

	case ScopeGlobal:
		assign(s.global, parts, value)

	case ScopeExecution:
		switch key {
		case KeyCurrentRound:
			round, ok := value.(int)
			if !ok {
				return errors.New(errors.ErrCodeStateScope, "current_round must be an int")
			}
			s.currentRound = round
		case KeyLastCompletedStep:
			step, _ := value.(string)
			s.lastCompletedStep = step
		default:
			return errors.New(errors.ErrCodeStateScope,
				fmt.Sprintf("cannot set execution variable: %s", key))
		}

	default:
		return errors.New(errors.ErrCodeStateScope, fmt.Sprintf("invalid scope: %s", scope))
	}

	return nil
}

// CurrentRound returns the round the store is positioned at.
func (s *Store) CurrentRound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRound
}

// LastCompletedStep returns the name of the last step that completed,
// or "" at the start of a round.
func (s *Store) LastCompletedStep() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCompletedStep
}

// NextRound advances to the next round and clears the completed-step
// marker. Values written at round scope in earlier rounds become
// invisible to Get.
func (s *Store) NextRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRound++
	s.lastCompletedStep = ""
}

// RoundState returns a copy of the current round's top-level entries.
func (s *Store) RoundState() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	round, ok := s.rounds[strconv.Itoa(s.currentRound)]
	if !ok {
		return map[string]any{}
	}

	out := make(map[string]any, len(round))
	for k, v := range round {
		out[k] = v
	}
	return out
}

func lookup(m map[string]any, parts []string) (any, bool) {
	var current any = m
	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(m map[string]any, parts []string, value any) {
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
