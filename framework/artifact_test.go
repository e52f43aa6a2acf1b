package framework

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArtifacts = "testdata/artifacts"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindArtifactByName(t *testing.T) {
	artifact, err := FindArtifact(testArtifacts, "ZeroxBin")
	require.NoError(t, err)

	assert.Equal(t, "ZeroxBin", artifact.ContractName)
	assert.Equal(t, "contracts/ZeroxBin.sol:ZeroxBin", artifact.FullyQualifiedName())
	assert.NotEmpty(t, artifact.Code)
	assert.Equal(t, []byte{0x00}, artifact.DeployedCode)
	require.Len(t, artifact.Abi.Constructor.Inputs, 1)
	assert.Equal(t, "address", artifact.Abi.Constructor.Inputs[0].Type.String())
}

func TestFindArtifactByQualifiedName(t *testing.T) {
	artifact, err := FindArtifact(testArtifacts, "contracts/ZeroxBin.sol:ZeroxBin")
	require.NoError(t, err)
	assert.Equal(t, "ZeroxBin", artifact.ContractName)

	_, err = FindArtifact(testArtifacts, "contracts/Other.sol:ZeroxBin")
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestFindArtifactNotFound(t *testing.T) {
	_, err := FindArtifact(testArtifacts, "Missing")
	require.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = FindArtifact(filepath.Join(t.TempDir(), "nope"), "ZeroxBin")
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestFindArtifactAmbiguous(t *testing.T) {
	dir := t.TempDir()
	artifact := func(source string) string {
		return `{"contractName":"Token","sourceName":"` + source + `","abi":[],"bytecode":"0x6000"}`
	}
	writeFile(t, filepath.Join(dir, "contracts/Token.sol/Token.json"), artifact("contracts/Token.sol"))
	writeFile(t, filepath.Join(dir, "contracts/mocks/Token.sol/Token.json"), artifact("contracts/mocks/Token.sol"))

	_, err := FindArtifact(dir, "Token")
	require.ErrorIs(t, err, ErrAmbiguousArtifact)
	assert.Contains(t, err.Error(), "contracts/Token.sol:Token, contracts/mocks/Token.sol:Token")

	resolved, err := FindArtifact(dir, "contracts/mocks/Token.sol:Token")
	require.NoError(t, err)
	assert.Equal(t, "contracts/mocks/Token.sol", resolved.SourceName)
}

func TestFindArtifactSkipsBuildInfo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build-info/Token.json"), `not json`)
	writeFile(t, filepath.Join(dir, "contracts/Token.sol/Token.json"), `{"contractName":"Token","sourceName":"contracts/Token.sol","abi":[],"bytecode":"0x6000"}`)

	_, err := FindArtifact(dir, "Token")
	require.NoError(t, err)
}

func TestReadForgeArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out/ZeroxBin.sol/ZeroxBin.json")
	writeFile(t, path, `{
		"abi": [{"type":"constructor","inputs":[{"name":"_devAddress","type":"address","internalType":"address"}],"stateMutability":"nonpayable"}],
		"bytecode": {"object": "0x6001600c60003960016000f300", "sourceMap": "", "linkReferences": {}},
		"deployedBytecode": {"object": "0x00", "sourceMap": "", "linkReferences": {}}
	}`)

	artifact, err := ReadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "ZeroxBin", artifact.ContractName)
	assert.Equal(t, "ZeroxBin.sol", artifact.SourceName)
	assert.Len(t, artifact.Code, 13)
}

func TestReadArtifactErrors(t *testing.T) {
	dir := t.TempDir()

	unlinked := filepath.Join(dir, "Linked.json")
	writeFile(t, unlinked, `{"contractName":"Linked","abi":[],"bytecode":"0x73__$2f1c0b6a0f1e4d3c2b1a$__6000"}`)
	_, err := ReadArtifact(unlinked)
	require.ErrorIs(t, err, ErrUnlinkedBytecode)

	badHex := filepath.Join(dir, "Bad.json")
	writeFile(t, badHex, `{"contractName":"Bad","abi":[],"bytecode":"0xzz"}`)
	_, err = ReadArtifact(badHex)
	require.Error(t, err)

	empty := filepath.Join(dir, "contracts/Iface.sol/Iface.json")
	writeFile(t, empty, `{"contractName":"Iface","sourceName":"contracts/Iface.sol","abi":[],"bytecode":"0x"}`)
	_, err = FindArtifact(dir, "Iface")
	require.ErrorIs(t, err, ErrEmptyBytecode)
}
