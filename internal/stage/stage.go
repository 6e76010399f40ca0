package stage

import (
	"context"

	"github.com/prometheus-swarm/harness/internal/log"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/state"
	"github.com/prometheus-swarm/harness/internal/worker"
)

// Runner is the orchestrator-provided view a stage works against:
// scoped state access plus the shared session facts (task id, current
// round, service client).
type Runner interface {
	// Get looks up a key across scopes (round, then global, then
	// execution).
	Get(key string) (any, error)

	// GetString is Get for string values, returning "" when absent.
	GetString(key string) string

	// Set stores a value under the given scope.
	Set(key string, value any, scope state.Scope) error

	// CurrentRound returns the round being executed.
	CurrentRound() int

	// Client returns the coordination-service client.
	Client() *middleserver.Client

	// Logger returns the runner's logger.
	Logger() *log.Logger
}

// Data is the bundle prepare hands to execute. A nil Data means the
// stage has nothing to do this round and execute should report a
// successful no-op.
type Data map[string]any

// Result is what execute returns; it always carries at least a
// "success" boolean.
type Result map[string]any

// OK reports whether the result carries "success": true.
func (r Result) OK() bool {
	success, _ := r["success"].(bool)
	return success
}

// Message returns the result's "message" string, or "".
func (r Result) Message() string {
	msg, _ := r["message"].(string)
	return msg
}

// Skipped builds the successful no-op result used when prepare found
// nothing to do.
func Skipped(message string) Result {
	return Result{"success": true, "message": message}
}

// Stage is a two-phase unit of orchestrated work. Prepare is pure with
// respect to the network: it reads runner and worker state and builds
// the signed request bundle. Execute transmits it and interprets the
// reply, writing derived values back into round-scoped state.
type Stage interface {
	// Name identifies the stage in logs and step definitions.
	Name() string

	// Prepare builds the data bundle for execute. Returning nil Data
	// with nil error marks the invocation as a skip.
	Prepare(r Runner, w *worker.Worker) (Data, error)

	// Execute sends the prepared request and interprets the response.
	Execute(ctx context.Context, r Runner, w *worker.Worker, data Data) (Result, error)
}
