package framework

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBuildInfo(t *testing.T) {
	artifact, err := FindArtifact(testArtifacts, "ZeroxBin")
	require.NoError(t, err)

	info, err := ReadBuildInfo(artifact)
	require.NoError(t, err)
	assert.Equal(t, SolidityVersion, info.SolcVersion)
	assert.Equal(t, "0.8.27+commit.40a35a09", info.SolcLongVersion)
	assert.Contains(t, string(info.Input), "contracts/ZeroxBin.sol")

	reverter, err := FindArtifact(testArtifacts, "Reverter")
	require.NoError(t, err)
	_, err = ReadBuildInfo(reverter)
	require.ErrorIs(t, err, ErrMissingBuildInfo)
}

func TestEncodeConstructorArgs(t *testing.T) {
	artifact, err := FindArtifact(testArtifacts, "ZeroxBin")
	require.NoError(t, err)

	encoded, err := EncodeConstructorArgs(artifact, []string{devAddress})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 24)+strings.ToLower(devAddress[2:]), encoded)

	_, err = EncodeConstructorArgs(artifact, []string{devAddress + "a"})
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestVerifyContract(t *testing.T) {
	fake := &fakeExplorer{pending: 1}
	explorer := newTestExplorer(t, fake, "/api")

	artifact, err := FindArtifact(testArtifacts, "ZeroxBin")
	require.NoError(t, err)

	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	err = VerifyContract(context.Background(), discardLogger(), explorer, artifact, addr, []string{devAddress})
	require.NoError(t, err)

	require.Len(t, fake.submissions, 1)
	form := fake.submissions[0]
	assert.Equal(t, "verifysourcecode", form.Get("action"))
	assert.Equal(t, "solidity-standard-json-input", form.Get("codeformat"))
	assert.Equal(t, addr.Hex(), form.Get("contractaddress"))
	assert.Equal(t, "contracts/ZeroxBin.sol:ZeroxBin", form.Get("contractname"))
	assert.Equal(t, "v0.8.27+commit.40a35a09", form.Get("compilerversion"))
	assert.Equal(t, strings.Repeat("0", 24)+strings.ToLower(devAddress[2:]), form.Get("constructorArguements"))
	assert.Contains(t, form.Get("sourceCode"), `"language"`)
	assert.True(t, fake.verified)

	// a second run finds the source already published
	err = VerifyContract(context.Background(), discardLogger(), explorer, artifact, addr, []string{devAddress})
	require.NoError(t, err)
	assert.Len(t, fake.submissions, 1)
}

func TestVerifyContractCompilerPin(t *testing.T) {
	fake := &fakeExplorer{}
	explorer := newTestExplorer(t, fake, "/api")

	artifact, err := FindArtifact(testArtifacts, "LegacyBin")
	require.NoError(t, err)

	err = VerifyContract(context.Background(), discardLogger(), explorer, artifact, common.HexToAddress(devAddress), nil)
	require.ErrorIs(t, err, ErrCompilerVersion)
	assert.Empty(t, fake.submissions)
}
