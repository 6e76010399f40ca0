package summarizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/signature"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

const (
	actionAddTodoPR = "add-todo-pr"

	addTodoPRPath = "/summarizer/worker/add-todo-pr"
)

// AddTodoPR reports the worker's pull request URL for the current
// round back to the coordination service. The stage skips itself when
// the round recorded no PR URL for the worker.
type AddTodoPR struct {
	console *ux.Console
}

// NewAddTodoPR creates the stage. A nil console falls back to stdout.
func NewAddTodoPR(console *ux.Console) *AddTodoPR {
	if console == nil {
		console = ux.Default()
	}
	return &AddTodoPR{console: console}
}

// Name implements stage.Stage.
func (s *AddTodoPR) Name() string {
	return actionAddTodoPR
}

// Prepare signs the add-todo-pr intent with the staking key. Only the
// staking signature crosses the boundary; the service reconstructs the
// intent from its own records.
func (s *AddTodoPR) Prepare(r stage.Runner, w *worker.Worker) (stage.Data, error) {
	prURL := r.GetString("pr_urls." + w.Name())
	if prURL == "" {
		s.console.Notice("No PR URL found for %s - continuing", w.Name())
		return nil, nil
	}

	payload := signature.Payload{
		"taskId":      r.GetString("task_id"),
		"action":      actionAddTodoPR,
		"roundNumber": r.CurrentRound(),
		"prUrl":       prURL,
		"stakingKey":  w.StakingPublicKey(),
		"pubKey":      w.PublicKey(),
	}

	sig, err := signature.Sign(w.StakingSigningKey(), payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStagePrepare, "sign add-todo-pr intent", err)
	}

	return stage.Data{
		"signature":  sig,
		"stakingKey": w.StakingPublicKey(),
	}, nil
}

// Execute posts the signature to the add-todo-pr endpoint with the
// usual 409 handling.
func (s *AddTodoPR) Execute(ctx context.Context, r stage.Runner, w *worker.Worker, data stage.Data) (stage.Result, error) {
	if data == nil {
		return stage.Skipped("Skipped due to missing PR URL"), nil
	}

	resp, err := r.Client().PostJSON(ctx, addTodoPRPath, map[string]any{
		"signature":  data["signature"],
		"stakingKey": data["stakingKey"],
	})
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusConflict {
		msg := resp.Message(noEligibleTodos)
		s.console.Notice("%s for %s - continuing", msg, w.Name())
		return stage.Result{"success": true, "message": msg}, nil
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, errors.Wrap(errors.ErrCodeHTTPStatus,
			fmt.Sprintf("add-todo-pr for %s", w.Name()),
			&middleserver.StatusError{Status: resp.Status, Body: string(resp.Raw)})
	}

	result := stage.Result{}
	for k, v := range resp.Body {
		result[k] = v
	}
	return result, nil
}
