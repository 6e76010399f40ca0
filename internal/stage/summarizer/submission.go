package summarizer

import (
	"context"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/signature"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/state"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

// Submission signs the worker's round submission under the audit
// action and stores the signed bundle in round-scoped state, where the
// audit flow picks it up. It performs no network call.
type Submission struct {
	console *ux.Console
}

// NewSubmission creates the stage. A nil console falls back to stdout.
func NewSubmission(console *ux.Console) *Submission {
	if console == nil {
		console = ux.Default()
	}
	return &Submission{console: console}
}

// Name implements stage.Stage.
func (s *Submission) Name() string {
	return "submission"
}

// Prepare signs the submission payload with the staking key. Skips
// when the round recorded no PR URL for the worker.
func (s *Submission) Prepare(r stage.Runner, w *worker.Worker) (stage.Data, error) {
	prURL := r.GetString("pr_urls." + w.Name())
	if prURL == "" {
		s.console.Notice("No PR URL found for %s - continuing", w.Name())
		return nil, nil
	}

	payload := signature.Payload{
		"taskId":      r.GetString("task_id"),
		"roundNumber": r.CurrentRound(),
		"stakingKey":  w.StakingPublicKey(),
		"pubKey":      w.PublicKey(),
		"action":      "audit",
		"prUrl":       prURL,
	}

	sig, err := signature.Sign(w.StakingSigningKey(), payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStagePrepare, "sign submission payload", err)
	}

	return stage.Data{
		"prUrl":      prURL,
		"signature":  sig,
		"stakingKey": w.StakingPublicKey(),
		"pubKey":     w.PublicKey(),
	}, nil
}

// Execute stores the signed submission bundle under
// submission_data.<worker> in round scope.
func (s *Submission) Execute(ctx context.Context, r stage.Runner, w *worker.Worker, data stage.Data) (stage.Result, error) {
	if data == nil {
		return stage.Skipped("Skipped due to missing PR URL"), nil
	}

	if err := r.Set("submission_data."+w.Name(), map[string]any(data), state.ScopeRound); err != nil {
		return nil, err
	}

	return stage.Result{"success": true, "data": map[string]any(data)}, nil
}
