package framework

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("multiple artifacts match contract name")
	ErrUnlinkedBytecode  = errors.New("bytecode has unlinked library references")
	ErrEmptyBytecode     = errors.New("artifact has no creation bytecode")
)

// Artifact is a compiled contract blueprint: its ABI and creation bytecode.
type Artifact struct {
	ContractName string
	SourceName   string
	Abi          *abi.ABI
	Code         []byte
	DeployedCode []byte

	// Path is the artifact file the blueprint was read from.
	Path string
}

// FullyQualifiedName returns "source:Name", or just the name when the source is unknown.
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.ContractName
	}
	return a.SourceName + ":" + a.ContractName
}

type artifactFile struct {
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	Abi              json.RawMessage `json:"abi"`
	Bytecode         json.RawMessage `json:"bytecode"`
	DeployedBytecode json.RawMessage `json:"deployedBytecode"`
}

// ReadArtifact parses a hardhat (bytecode as a hex string) or forge
// (bytecode as {"object": hex}) artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}

	parsed, err := abi.JSON(bytes.NewReader(file.Abi))
	if err != nil {
		return nil, fmt.Errorf("parse abi in %s: %w", path, err)
	}

	code, err := decodeBytecode(file.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("creation bytecode in %s: %w", path, err)
	}
	deployed, err := decodeBytecode(file.DeployedBytecode)
	if err != nil {
		return nil, fmt.Errorf("deployed bytecode in %s: %w", path, err)
	}

	// forge artifacts carry neither name; fall back to the out/<Source>.sol/<Name>.json layout
	name := file.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	source := file.SourceName
	if source == "" {
		source = filepath.Base(filepath.Dir(path))
	}

	return &Artifact{
		ContractName: name,
		SourceName:   source,
		Abi:          &parsed,
		Code:         code,
		DeployedCode: deployed,
		Path:         path,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("unexpected bytecode encoding: %w", err)
		}
		str = obj.Object
	}

	str = strings.TrimPrefix(str, "0x")
	if strings.Contains(str, "__") {
		return nil, ErrUnlinkedBytecode
	}
	code, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return code, nil
}

// FindArtifact resolves a contract by name ("ZeroxBin") or fully qualified
// name ("contracts/ZeroxBin.sol:ZeroxBin") under an artifacts directory.
func FindArtifact(dir, name string) (*Artifact, error) {
	source, contract := splitQualifiedName(name)

	var matches []*Artifact
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != contract+".json" {
			return nil
		}

		artifact, err := ReadArtifact(path)
		if err != nil {
			return err
		}
		if artifact.ContractName != contract {
			return nil
		}
		if source != "" && !sameSource(artifact.SourceName, source) {
			return nil
		}
		matches = append(matches, artifact)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: artifacts directory %s does not exist", ErrArtifactNotFound, dir)
		}
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s in %s", ErrArtifactNotFound, name, dir)
	case 1:
		if len(matches[0].Code) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyBytecode, matches[0].Path)
		}
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.FullyQualifiedName()
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w %s, use one of: %s", ErrAmbiguousArtifact, name, strings.Join(names, ", "))
	}
}

func splitQualifiedName(name string) (source, contract string) {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func sameSource(artifactSource, wanted string) bool {
	if artifactSource == wanted {
		return true
	}
	// forge only knows the file name
	return !strings.Contains(artifactSource, "/") && artifactSource == path.Base(wanted)
}
