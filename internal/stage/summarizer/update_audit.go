package summarizer

import (
	"context"
	"fmt"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/worker"
)

const updateAuditPath = "/summarizer/worker/update-audit-result"

// UpdateAudit tells the coordination service to roll up the audit
// results for the round. Unlike the todo stages there is no expected
// 409: any non-2xx is a hard failure.
type UpdateAudit struct{}

// NewUpdateAudit creates the stage.
func NewUpdateAudit() *UpdateAudit {
	return &UpdateAudit{}
}

// Name implements stage.Stage.
func (s *UpdateAudit) Name() string {
	return "update-audit"
}

// Prepare bundles the task and round identifiers.
func (s *UpdateAudit) Prepare(r stage.Runner, w *worker.Worker) (stage.Data, error) {
	return stage.Data{
		"taskId": r.GetString("task_id"),
		"round":  r.CurrentRound(),
	}, nil
}

// Execute posts to the update-audit-result endpoint. Any 2xx reply is
// success regardless of body shape.
func (s *UpdateAudit) Execute(ctx context.Context, r stage.Runner, w *worker.Worker, data stage.Data) (stage.Result, error) {
	resp, err := r.Client().PostJSON(ctx, updateAuditPath, map[string]any(data))
	if err != nil {
		return nil, err
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, errors.Wrap(errors.ErrCodeHTTPStatus,
			fmt.Sprintf("update-audit-result for round %d", r.CurrentRound()),
			&middleserver.StatusError{Status: resp.Status, Body: string(resp.Raw)})
	}

	return stage.Result{"success": true, "message": string(resp.Raw)}, nil
}
