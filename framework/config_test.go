package framework

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hardhat/anvil development account #0
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var configEnv = []string{
	"NETWORK", "INFURA_PROJECT_ID", "PRIVATE_KEY", "ARBISCAN_API_KEY", "RPC_URL", "CHAIN_ID",
	"ARTIFACTS_DIR", "DEV_ADDRESS", "GAS_LIMIT", "CONFIRM_TIMEOUT", "LOG_LEVEL",
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t, configEnv...)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ArbitrumSepolia, cfg.Network)
	assert.Equal(t, "artifacts", cfg.ArtifactsDir)
	assert.Equal(t, 10*time.Minute, cfg.ConfirmTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.PrivateKey)
}

func TestLoadConfigEnvFile(t *testing.T) {
	clearEnv(t, configEnv...)
	t.Setenv("INFURA_PROJECT_ID", "from-process")

	envFile := filepath.Join(t.TempDir(), "deploy.env")
	content := "INFURA_PROJECT_ID=from-file\nPRIVATE_KEY=" + testKey + "\nNETWORK=arbitrumOne\nCONFIRM_TIMEOUT=90s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	// process environment wins over the file, like dotenv
	assert.Equal(t, "from-process", cfg.InfuraProjectID)
	assert.Equal(t, testKey, cfg.PrivateKey)
	assert.Equal(t, ArbitrumOne, cfg.Network)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestValidateDeploy(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Network:         ArbitrumSepolia,
			InfuraProjectID: "project",
			PrivateKey:      "0x" + testKey,
			ConfirmTimeout:  time.Minute,
		}
	}

	require.NoError(t, valid().ValidateDeploy())

	t.Run("missing private key", func(t *testing.T) {
		cfg := valid()
		cfg.PrivateKey = ""
		require.ErrorIs(t, cfg.ValidateDeploy(), ErrMissingPrivateKey)
	})

	t.Run("malformed private key", func(t *testing.T) {
		cfg := valid()
		cfg.PrivateKey = "0x1234"
		err := cfg.ValidateDeploy()
		require.ErrorIs(t, err, ErrInvalidPrivateKey)
		assert.NotContains(t, err.Error(), "1234")
	})

	t.Run("missing project id", func(t *testing.T) {
		cfg := valid()
		cfg.InfuraProjectID = ""
		require.ErrorIs(t, cfg.ValidateDeploy(), ErrMissingProjectID)
	})

	t.Run("rpc override needs no project id", func(t *testing.T) {
		cfg := valid()
		cfg.InfuraProjectID = ""
		cfg.RPCURL = "http://127.0.0.1:8545"
		require.NoError(t, cfg.ValidateDeploy())
	})

	t.Run("unknown network", func(t *testing.T) {
		cfg := valid()
		cfg.Network = "mainnet"
		require.ErrorIs(t, cfg.ValidateDeploy(), ErrUnknownNetwork)
	})
}

func TestValidateVerify(t *testing.T) {
	cfg := &Config{Network: ArbitrumOne}
	require.ErrorIs(t, cfg.ValidateVerify(), ErrMissingAPIKey)

	cfg.ArbiscanAPIKey = "key"
	require.NoError(t, cfg.ValidateVerify())
}

func TestResolveNetworkOverrides(t *testing.T) {
	cfg := &Config{Network: ArbitrumSepolia, RPCURL: "http://localhost:8545", ChainID: 31337}

	n, err := cfg.ResolveNetwork()
	require.NoError(t, err)
	assert.Equal(t, int64(31337), n.ChainID)
	assert.Equal(t, "https://sepolia.arbiscan.io", n.BrowserURL)

	endpoint, err := cfg.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", endpoint)
}
