package worker

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus-swarm/harness/internal/errors"
	"github.com/prometheus-swarm/harness/internal/signature"
)

// Worker is a simulated participant identity. It holds two keypairs
// for distinct identity roles (staking and public) plus environment
// configuration resolved at construction time. A Worker is immutable
// for the session; signing keys never leave it except through Sign
// calls made by stages.
type Worker struct {
	name    string
	staking *signature.Keypair
	public  *signature.Keypair
	env     map[string]string
}

// Config describes how to construct one worker. Keypair fields name
// the environment variables holding the keypair file paths; when
// empty they default to <NAME>_STAKING_KEYPAIR / <NAME>_PUBLIC_KEYPAIR.
type Config struct {
	StakingKeypairEnv string            `yaml:"staking_keypair_env"`
	PublicKeypairEnv  string            `yaml:"public_keypair_env"`
	EnvVars           map[string]string `yaml:"env_vars"`
}

// New builds a worker from already-loaded keypairs and a resolved
// environment map. The env map is copied.
func New(name string, staking, public *signature.Keypair, env map[string]string) *Worker {
	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}
	return &Worker{
		name:    name,
		staking: staking,
		public:  public,
		env:     copied,
	}
}

// Load constructs a worker from its config, reading keypair files at
// the paths named by the configured environment variables and
// resolving env_vars from the process environment.
func Load(name string, cfg Config) (*Worker, error) {
	stakingPath, err := keypairPath(name, cfg.StakingKeypairEnv, "STAKING")
	if err != nil {
		return nil, err
	}
	publicPath, err := keypairPath(name, cfg.PublicKeypairEnv, "PUBLIC")
	if err != nil {
		return nil, err
	}

	staking, err := signature.LoadKeypair(stakingPath)
	if err != nil {
		return nil, fmt.Errorf("worker %s staking keypair: %w", name, err)
	}
	public, err := signature.LoadKeypair(publicPath)
	if err != nil {
		return nil, fmt.Errorf("worker %s public keypair: %w", name, err)
	}

	env := make(map[string]string, len(cfg.EnvVars))
	for key, envVarName := range cfg.EnvVars {
		env[key] = os.Getenv(envVarName)
	}

	return New(name, staking, public, env), nil
}

func keypairPath(name, envVar, role string) (string, error) {
	if envVar == "" {
		envVar = fmt.Sprintf("%s_%s_KEYPAIR", strings.ToUpper(name), role)
	}
	path := os.Getenv(envVar)
	if path == "" {
		return "", errors.New(errors.ErrCodeWorkerEnvUnset,
			fmt.Sprintf("environment variable %s is not set", envVar)).
			WithSuggestion("Point it at the worker's keypair JSON file")
	}
	return path, nil
}

// Name returns the worker's name.
func (w *Worker) Name() string {
	return w.name
}

// StakingPublicKey returns the base58 staking public key.
func (w *Worker) StakingPublicKey() string {
	return w.staking.PublicKey
}

// StakingSigningKey returns the staking signing key.
func (w *Worker) StakingSigningKey() ed25519.PrivateKey {
	return w.staking.SigningKey()
}

// PublicKey returns the base58 public-identity key.
func (w *Worker) PublicKey() string {
	return w.public.PublicKey
}

// PublicSigningKey returns the public-identity signing key.
func (w *Worker) PublicSigningKey() ed25519.PrivateKey {
	return w.public.SigningKey()
}

// Env returns the configured environment value for key, or "".
func (w *Worker) Env(key string) string {
	return w.env[key]
}
