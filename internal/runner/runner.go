package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/log"
	"github.com/prometheus-swarm/harness/internal/middleserver"
	"github.com/prometheus-swarm/harness/internal/stage"
	"github.com/prometheus-swarm/harness/internal/state"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

// Step binds a stage to the worker identity that runs it. Steps execute
// in sequence each round.
type Step struct {
	Name        string
	Description string
	WorkerName  string
	Stage       stage.Stage
}

// Options configures a Runner.
type Options struct {
	// TaskID is seeded into global state for stages to read.
	TaskID string

	// BaseURL is the coordination-service address. Ignored when Client
	// is set.
	BaseURL string

	// DataDir is where state snapshots live.
	DataDir string

	// MaxRounds bounds the run.
	MaxRounds int

	// Reset discards any persisted state before starting.
	Reset bool

	// Client overrides the HTTP client, mainly for tests.
	Client *middleserver.Client

	// Logger defaults to the global logger.
	Logger *log.Logger

	// Console defaults to stdout.
	Console *ux.Console
}

// Runner drives the step sequence across rounds, persisting state
// after every completed step so an interrupted run resumes where it
// left off.
type Runner struct {
	store     *state.Store
	manager   *state.Manager
	client    *middleserver.Client
	logger    *log.Logger
	console   *ux.Console
	workers   map[string]*worker.Worker
	steps     []Step
	runID     string
	maxRounds int
}

// New creates a runner, loading a persisted snapshot when one exists
// and the reset flag is not set. A fresh run gets a new run id and its
// global state seeded from the options.
func New(opts Options, workers map[string]*worker.Worker, steps []Step) (*Runner, error) {
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "run has no steps defined")
	}
	for _, step := range steps {
		if _, ok := workers[step.WorkerName]; !ok {
			return nil, errors.NewWorkerNotFoundError(step.WorkerName)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	console := opts.Console
	if console == nil {
		console = ux.Default()
	}
	client := opts.Client
	if client == nil {
		client = middleserver.NewClient(opts.BaseURL)
	}
	maxRounds := opts.MaxRounds
	if maxRounds < 1 {
		maxRounds = 1
	}

	manager := state.NewManager(opts.DataDir)
	if opts.Reset {
		if err := manager.Delete(); err != nil {
			return nil, err
		}
	}

	store, runID, resumed, err := manager.Load()
	if err != nil {
		return nil, err
	}
	if resumed {
		logger.Info("resuming run",
			"run_id", runID,
			"round", store.CurrentRound(),
			"last_completed_step", store.LastCompletedStep())
	} else {
		store = state.NewStore()
		runID = uuid.NewString()
		if err := store.Set("task_id", opts.TaskID, state.ScopeGlobal); err != nil {
			return nil, err
		}
		if err := store.Set("middle_server_url", client.BaseURL(), state.ScopeGlobal); err != nil {
			return nil, err
		}
		logger.Info("starting run", "run_id", runID, "task_id", opts.TaskID)
	}

	return &Runner{
		store:     store,
		manager:   manager,
		client:    client,
		logger:    logger,
		console:   console,
		workers:   workers,
		steps:     steps,
		runID:     runID,
		maxRounds: maxRounds,
	}, nil
}

// RunID returns the identifier stamped into state snapshots.
func (r *Runner) RunID() string {
	return r.runID
}

// Get looks a key up across scopes.
func (r *Runner) Get(key string) (any, error) {
	return r.store.Get(key)
}

// GetString is Get for string values.
func (r *Runner) GetString(key string) string {
	return r.store.GetString(key)
}

// Set stores a value under the given scope.
func (r *Runner) Set(key string, value any, scope state.Scope) error {
	return r.store.Set(key, value, scope)
}

// CurrentRound returns the round being executed.
func (r *Runner) CurrentRound() int {
	return r.store.CurrentRound()
}

// Client returns the coordination-service client.
func (r *Runner) Client() *middleserver.Client {
	return r.client
}

// Logger returns the runner's logger.
func (r *Runner) Logger() *log.Logger {
	return r.logger
}

// Run executes the step sequence for every remaining round. The first
// round of a resumed run skips the steps recorded as already complete.
// The run stops at the first stage error or unsuccessful result.
func (r *Runner) Run(ctx context.Context) error {
	for r.store.CurrentRound() <= r.maxRounds {
		r.console.Infof("ROUND %d of %d", r.store.CurrentRound(), r.maxRounds)

		if err := r.runRound(ctx); err != nil {
			return err
		}

		if r.store.CurrentRound() >= r.maxRounds {
			break
		}
		r.store.NextRound()
		if err := r.manager.Save(r.store, r.runID); err != nil {
			return err
		}
	}

	r.console.Notice("Run %s complete after %d round(s)", r.runID, r.store.CurrentRound())
	return nil
}

func (r *Runner) runRound(ctx context.Context) error {
	skipping := r.store.LastCompletedStep() != ""

	for _, step := range r.steps {
		if skipping {
			if step.Name == r.store.LastCompletedStep() {
				skipping = false
			}
			r.logger.Debug("step already complete", "step", step.Name, "round", r.store.CurrentRound())
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.runStep(ctx, step); err != nil {
			return err
		}

		if err := r.store.Set(state.KeyLastCompletedStep, step.Name, state.ScopeExecution); err != nil {
			return err
		}
		if err := r.manager.Save(r.store, r.runID); err != nil {
			return err
		}
	}

	if skipping {
		// The recorded step name is not in the current sequence, so
		// resuming by position is impossible.
		return errors.New(errors.ErrCodeStateScope,
			fmt.Sprintf("persisted step %q not found in step sequence", r.store.LastCompletedStep())).
			WithSuggestion("Run with --reset to discard the stale state")
	}

	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	r.console.StepBanner(step.Name, step.Description)

	w := r.workers[step.WorkerName]
	logger := r.logger.With("step", step.Name, "worker", w.Name(), "round", r.store.CurrentRound())

	data, err := step.Stage.Prepare(r, w)
	if err != nil {
		logger.WithError(err).Error("stage preparation failed")
		return errors.NewStageFailedError(step.Name, err)
	}

	result, err := step.Stage.Execute(ctx, r, w, data)
	if err != nil {
		logger.WithError(err).Error("stage execution failed")
		return errors.NewStageFailedError(step.Name, err)
	}

	if !result.OK() {
		msg := result.Message()
		if msg == "" {
			msg = "stage reported failure without a message"
		}
		r.console.Failure("%s: %s", step.Name, msg)
		return errors.NewStageFailedError(step.Name,
			errors.New(errors.ErrCodeStageFailed, msg))
	}

	logger.Info("step complete", "message", result.Message())
	return nil
}
