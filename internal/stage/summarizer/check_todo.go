package summarizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

const checkTodoPath = "/summarizer/worker/check-todo"

// CheckTodo asks the coordination service to validate the worker's PR
// for the current round. The request is unsigned; the service matches
// it against the staking key's recorded assignment.
type CheckTodo struct {
	console *ux.Console
}

// NewCheckTodo creates the stage. A nil console falls back to stdout.
func NewCheckTodo(console *ux.Console) *CheckTodo {
	if console == nil {
		console = ux.Default()
	}
	return &CheckTodo{console: console}
}

// Name implements stage.Stage.
func (s *CheckTodo) Name() string {
	return "check-todo"
}

// Prepare bundles the identifiers the check endpoint wants, skipping
// when the round recorded no PR URL for the worker.
func (s *CheckTodo) Prepare(r stage.Runner, w *worker.Worker) (stage.Data, error) {
	prURL := r.GetString("pr_urls." + w.Name())
	if prURL == "" {
		s.console.Notice("No PR URL found for %s - continuing", w.Name())
		return nil, nil
	}

	return stage.Data{
		"stakingKey":     w.StakingPublicKey(),
		"roundNumber":    r.CurrentRound(),
		"githubUsername": w.Env("GITHUB_USERNAME"),
		"prUrl":          prURL,
	}, nil
}

// Execute posts the bundle to the check-todo endpoint with the usual
// 409 handling.
func (s *CheckTodo) Execute(ctx context.Context, r stage.Runner, w *worker.Worker, data stage.Data) (stage.Result, error) {
	if data == nil {
		return stage.Skipped("No PR URL found"), nil
	}

	resp, err := r.Client().PostJSON(ctx, checkTodoPath, map[string]any(data))
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
			fmt.Sprintf("check-todo for %s", w.Name()),
			&middleserver.StatusError{Status: resp.Status, Body: string(resp.Raw)})
	}

	result := stage.Result{}
	for k, v := range resp.Body {
		result[k] = v
	}
	return result, nil
}
