package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// snapshot is the on-disk form of a Store plus run metadata.
type snapshot struct {
	Version           string                    `json:"version"`
	RunID             string                    `json:"run_id"`
	Rounds            map[string]map[string]any `json:"rounds"`
	Global            map[string]any            `json:"global"`
	CurrentRound      int                       `json:"current_round"`
	LastCompletedStep string                    `json:"last_completed_step,omitempty"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// Manager persists store snapshots so an interrupted run can resume
// from its last completed step.
type Manager struct {
	dataDir string
}

// NewManager creates a manager writing snapshots under dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{dataDir: dataDir}
}

func (m *Manager) statePath() string {
	return filepath.Join(m.dataDir, "test_state.json")
}

// Save writes the store to disk, stamping the snapshot with the run id.
func (m *Manager) Save(store *Store, runID string) error {
	store.mu.RLock()
	snap := snapshot{
		Version:           "1.0",
		RunID:             runID,
		Rounds:            store.rounds,
		Global:            store.global,
		CurrentRound:      store.currentRound,
		LastCompletedStep: store.lastCompletedStep,
		UpdatedAt:         time.Now(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	store.mu.RUnlock()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStatePersist, "marshal state", err)
	}

	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStatePersist, "create data directory", err)
	}

	if err := os.WriteFile(m.statePath(), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStatePersist, "write state file", err)
	}

	return nil
}

// Load reads a snapshot from disk into a fresh store. The bool result
// is false when no snapshot exists.
func (m *Manager) Load() (*Store, string, bool, error) {
	data, err := os.ReadFile(m.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", false, nil
		}
		return nil, "", false, errors.Wrap(errors.ErrCodeStatePersist, "read state file", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeStatePersist,
			fmt.Sprintf("parse state file %s", m.statePath()), err)
	}

	store := NewStore()
	if snap.Rounds != nil {
		store.rounds = snap.Rounds
	}
	if snap.Global != nil {
		store.global = snap.Global
	}
	if snap.CurrentRound > 0 {
		store.currentRound = snap.CurrentRound
	}
	store.lastCompletedStep = snap.LastCompletedStep

	return store, snap.RunID, true, nil
}

// Exists reports whether a snapshot is present on disk.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.statePath())
	return err == nil
}

// Delete removes the snapshot, if any.
func (m *Manager) Delete() error {
	err := os.Remove(m.statePath())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStatePersist, "delete state file", err)
	}
	return nil
}
