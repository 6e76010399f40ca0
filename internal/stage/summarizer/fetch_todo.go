// Package summarizer holds the stages that drive a worker through the
// summarizer task flow against the coordination service.
package summarizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/signature"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/state"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

const (
	actionFetchTodo = "fetch-todo"

	fetchTodoPath = "/summarizer/worker/fetch-todo"

	// Default shown when the service replies 409 without a message.
	noEligibleTodos = "No eligible todos"
)

// FetchTodo asks the coordination service for the worker's next todo.
// On success it records the assigned repository URL in round-scoped
// state for the stages that follow.
type FetchTodo struct {
	console *ux.Console
}

// NewFetchTodo creates the stage. A nil console falls back to stdout.
func NewFetchTodo(console *ux.Console) *FetchTodo {
	if console == nil {
		console = ux.Default()
	}
	return &FetchTodo{console: console}
}

// Name implements stage.Stage.
func (s *FetchTodo) Name() string {
	return actionFetchTodo
}

// Prepare builds the fetch-todo intent and signs it under both
// identity roles. The intent itself is discarded; only the identifying
// fields and the two signatures cross into execute.
func (s *FetchTodo) Prepare(r stage.Runner, w *worker.Worker) (stage.Data, error) {
	payload := signature.Payload{
		"taskId":         r.GetString("task_id"),
		"roundNumber":    r.CurrentRound(),
		"action":         actionFetchTodo,
		"githubUsername": w.Env("GITHUB_USERNAME"),
		"stakingKey":     w.StakingPublicKey(),
		"pubKey":         w.PublicKey(),
	}

	stakingSig, err := signature.Sign(w.StakingSigningKey(), payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStagePrepare, "sign fetch-todo intent with staking key", err)
	}
	publicSig, err := signature.Sign(w.PublicSigningKey(), payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStagePrepare, "sign fetch-todo intent with public key", err)
	}

	digest, err := signature.Digest(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStagePrepare, "digest fetch-todo intent", err)
	}
	r.Logger().Debug("intent prepared",
		"stage", s.Name(), "worker", w.Name(), "round", r.CurrentRound(), "digest", digest)

	return stage.Data{
		"taskId":           r.GetString("task_id"),
		"roundNumber":      r.CurrentRound(),
		"stakingKey":       w.StakingPublicKey(),
		"pubKey":           w.PublicKey(),
		"stakingSignature": stakingSig,
		"publicSignature":  publicSig,
		"intentDigest":     digest,
	}, nil
}

// Execute posts the staking signature to the fetch-todo endpoint and
// branches on the reply: 409 is an expected no-work condition, any
// other non-2xx is a hard failure, and a successful body yields the
// round-scoped repo_url.
func (s *FetchTodo) Execute(ctx context.Context, r stage.Runner, w *worker.Worker, data stage.Data) (stage.Result, error) {
	resp, err := r.Client().PostJSON(ctx, fetchTodoPath, map[string]any{
		"signature":  data["stakingSignature"],
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
			fmt.Sprintf("fetch-todo for %s", w.Name()),
			&middleserver.StatusError{Status: resp.Status, Body: string(resp.Raw)})
	}

	result := stage.Result{}
	for k, v := range resp.Body {
		result[k] = v
	}

	if resp.Success() {
		body := resp.Data()
		owner, ownerOK := body["repo_owner"].(string)
		name, nameOK := body["repo_name"].(string)
		if !ownerOK || !nameOK {
			return nil, errors.New(errors.ErrCodeHTTPDecode,
				"fetch-todo response is missing repo_owner/repo_name")
		}

		repoURL := fmt.Sprintf("https://github.com/%s/%s", owner, name)
		if err := r.Set("repo_url", repoURL, state.ScopeRound); err != nil {
			return nil, err
		}
		// The digest ties the assignment in the state snapshot back to
		// the exact signed intent.
		if digest, ok := data["intentDigest"].(string); ok {
			if err := r.Set("intent_digests."+w.Name(), digest, state.ScopeRound); err != nil {
				return nil, err
			}
			r.Logger().Info("todo assigned", "worker", w.Name(), "repo_url", repoURL, "digest", digest)
		} else {
			r.Logger().Info("todo assigned", "worker", w.Name(), "repo_url", repoURL)
		}
	}

	return result, nil
}
