package framework

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

var (
	ErrMissingPrivateKey = errors.New("missing PRIVATE_KEY: a signing key is required to deploy")
	ErrMissingAPIKey     = errors.New("missing ARBISCAN_API_KEY: an explorer api key is required to verify")
	ErrNoExplorer        = errors.New("network has no explorer api configured")
)

// Config is read from the process environment, optionally seeded from a .env file.
type Config struct {
	Network         string `env:"NETWORK" envDefault:"arbitrumSepolia"`
	InfuraProjectID string `env:"INFURA_PROJECT_ID"`
	PrivateKey      string `env:"PRIVATE_KEY"`
	ArbiscanAPIKey  string `env:"ARBISCAN_API_KEY"`

	// Overrides for local nodes and forks.
	RPCURL  string `env:"RPC_URL"`
	ChainID int64  `env:"CHAIN_ID"`

	ArtifactsDir   string        `env:"ARTIFACTS_DIR" envDefault:"artifacts"`
	DevAddress     string        `env:"DEV_ADDRESS"`
	GasLimit       uint64        `env:"GAS_LIMIT"`
	ConfirmTimeout time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"10m"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig loads envFile (or ./.env when empty) without overriding variables
// already set, then parses the environment. A missing default .env is not an error.
func LoadConfig(envFile string) (*Config, error) {
	file := envFile
	if file == "" {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// ResolveNetwork returns the selected network with RPC_URL and CHAIN_ID applied.
func (c *Config) ResolveNetwork() (Network, error) {
	n, err := LookupNetwork(c.Network)
	if err != nil {
		return Network{}, err
	}
	if c.RPCURL != "" {
		n.RPCURL = c.RPCURL
	}
	if c.ChainID != 0 {
		n.ChainID = c.ChainID
	}
	return n, nil
}

// Endpoint is the RPC URL the deployer dials.
func (c *Config) Endpoint() (string, error) {
	n, err := c.ResolveNetwork()
	if err != nil {
		return "", err
	}
	return n.Endpoint(c.InfuraProjectID)
}

// ValidateDeploy fails fast on anything a deployment needs before dialing.
func (c *Config) ValidateDeploy() error {
	if c.PrivateKey == "" {
		return ErrMissingPrivateKey
	}
	if _, err := ParsePrivKey(c.PrivateKey); err != nil {
		return err
	}
	if _, err := c.Endpoint(); err != nil {
		return err
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("CONFIRM_TIMEOUT must be positive, got %s", c.ConfirmTimeout)
	}
	return nil
}

// ValidateVerify checks the explorer settings needed for source verification.
func (c *Config) ValidateVerify() error {
	if c.ArbiscanAPIKey == "" {
		return ErrMissingAPIKey
	}
	n, err := c.ResolveNetwork()
	if err != nil {
		return err
	}
	if n.APIURL == "" {
		return fmt.Errorf("%w: %s", ErrNoExplorer, n.Name)
	}
	return nil
}
