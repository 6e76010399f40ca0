package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/prometheus-swarm/harness/internal/config"
	"github.com/prometheus-swarm/harness/internal/log"
	"github.com/prometheus-swarm/harness/internal/runner"
	"github.com/prometheus-swarm/harness/internal/stage/summarizer"
	"github.com/prometheus-swarm/harness/internal/ux"
	"github.com/prometheus-swarm/harness/internal/worker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the staged task sequence",
	Long: `Run loads the session and worker configuration, then executes the
step sequence round by round against the coordination service. State is
persisted after every step; rerunning resumes from the last completed
step unless --reset is given.`,
	RunE: runRun,
}

var (
	runConfigPath string
	runEnvFile    string
	runReset      bool
	runBaseURL    string
	runRounds     int
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "session.yaml", "session config file")
	runCmd.Flags().StringVar(&runEnvFile, "env", ".env", "env file with keypair paths and worker variables")
	runCmd.Flags().BoolVar(&runReset, "reset", false, "discard persisted state and start fresh")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "override the coordination-service URL")
	runCmd.Flags().IntVar(&runRounds, "rounds", 0, "override max_rounds from the config")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(runEnvFile); err != nil {
		return err
	}

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	if runBaseURL != "" {
		cfg.MiddleServerURL = runBaseURL
	}
	if runRounds > 0 {
		cfg.MaxRounds = runRounds
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	workerConfigs, err := config.LoadWorkers(cfg.WorkersConfig)
	if err != nil {
		return err
	}

	workers := make(map[string]*worker.Worker, len(workerConfigs))
	names := make([]string, 0, len(workerConfigs))
	for name, wc := range workerConfigs {
		w, err := worker.Load(name, wc)
		if err != nil {
			return err
		}
		workers[name] = w
		names = append(names, name)
	}
	sort.Strings(names)

	console := ux.Default()
	r, err := runner.New(runner.Options{
		TaskID:    cfg.TaskID,
		BaseURL:   cfg.MiddleServerURL,
		DataDir:   cfg.DataDir,
		MaxRounds: cfg.MaxRounds,
		Reset:     runReset,
		Logger:    log.DefaultLogger(),
		Console:   console,
	}, workers, summarizerSteps(names, console))
	if err != nil {
		return err
	}

	return r.Run(cmd.Context())
}

// summarizerSteps builds the per-round step sequence: each worker
// fetches a todo, opens and records its PR, and verifies it; then each
// worker files its audit submission, and the audit results are pushed
// back to the service.
func summarizerSteps(workerNames []string, console *ux.Console) []runner.Step {
	var steps []runner.Step
	for _, name := range workerNames {
		steps = append(steps,
			runner.Step{
				Name:        fmt.Sprintf("fetch-todo:%s", name),
				Description: fmt.Sprintf("Fetch a todo for %s", name),
				WorkerName:  name,
				Stage:       summarizer.NewFetchTodo(console),
			},
			runner.Step{
				Name:        fmt.Sprintf("add-todo-pr:%s", name),
				Description: fmt.Sprintf("Record the todo PR for %s", name),
				WorkerName:  name,
				Stage:       summarizer.NewAddTodoPR(console),
			},
			runner.Step{
				Name:        fmt.Sprintf("check-todo:%s", name),
				Description: fmt.Sprintf("Verify the todo PR for %s", name),
				WorkerName:  name,
				Stage:       summarizer.NewCheckTodo(console),
			},
		)
	}
	for _, name := range workerNames {
		steps = append(steps, runner.Step{
			Name:        fmt.Sprintf("submission:%s", name),
			Description: fmt.Sprintf("Build the audit submission for %s", name),
			WorkerName:  name,
			Stage:       summarizer.NewSubmission(console),
		})
	}
	steps = append(steps, runner.Step{
		Name:        "update-audit",
		Description: "Push audit results to the service",
		WorkerName:  workerNames[0],
		Stage:       summarizer.NewUpdateAudit(),
	})
	return steps
}
