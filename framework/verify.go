package framework

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingBuildInfo    = errors.New("artifact has no build info")
	ErrCompilerVersion     = errors.New("artifact compiled with unexpected solidity version")
	ErrVerificationTimeout = errors.New("verification still pending")
)

// BuildInfo is the hardhat build-info record an artifact was compiled in.
type BuildInfo struct {
	SolcVersion     string          `json:"solcVersion"`
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
}

// ReadBuildInfo follows <Name>.dbg.json next to the artifact to its build-info file.
func ReadBuildInfo(artifact *Artifact) (*BuildInfo, error) {
	dbgPath := strings.TrimSuffix(artifact.Path, ".json") + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingBuildInfo, err)
	}

	var dbg struct {
		BuildInfo string `json:"buildInfo"`
	}
	if err := json.Unmarshal(data, &dbg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", dbgPath, err)
	}
	if dbg.BuildInfo == "" {
		return nil, fmt.Errorf("%w: %s has no buildInfo reference", ErrMissingBuildInfo, dbgPath)
	}

	infoPath := filepath.Join(filepath.Dir(dbgPath), filepath.FromSlash(dbg.BuildInfo))
	data, err = os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingBuildInfo, err)
	}

	var info BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode %s: %w", infoPath, err)
	}
	if len(info.Input) == 0 {
		return nil, fmt.Errorf("%w: %s has no compiler input", ErrMissingBuildInfo, infoPath)
	}
	return &info, nil
}

// EncodeConstructorArgs returns the ABI-encoded constructor input as hex without 0x.
func EncodeConstructorArgs(artifact *Artifact, raw []string) (string, error) {
	args, err := ParseConstructorArgs(artifact.Abi.Constructor.Inputs, raw)
	if err != nil {
		return "", err
	}
	packed, err := artifact.Abi.Pack("", args...)
	if err != nil {
		return "", fmt.Errorf("pack constructor args: %w", err)
	}
	return hex.EncodeToString(packed), nil
}

// VerifyContract publishes the artifact's source for a deployed address,
// doing nothing when the explorer already has it.
func VerifyContract(ctx context.Context, log *logrus.Entry, explorer *Explorer, artifact *Artifact, addr common.Address, constructorArgs []string) error {
	log = log.WithField("contract", artifact.FullyQualifiedName()).WithField("address", addr.Hex())

	verified, err := explorer.IsVerified(ctx, addr)
	if err != nil {
		return err
	}
	if verified {
		log.Info("Contract is already verified")
		return nil
	}

	info, err := ReadBuildInfo(artifact)
	if err != nil {
		return err
	}
	if info.SolcVersion != SolidityVersion {
		return fmt.Errorf("%w: got %s, want %s", ErrCompilerVersion, info.SolcVersion, SolidityVersion)
	}

	encodedArgs, err := EncodeConstructorArgs(artifact, constructorArgs)
	if err != nil {
		return err
	}

	guid, err := explorer.Submit(ctx, VerificationRequest{
		Address:         addr,
		ContractName:    artifact.FullyQualifiedName(),
		SourceCode:      string(info.Input),
		CompilerVersion: "v" + info.SolcLongVersion,
		ConstructorArgs: encodedArgs,
	})
	if errors.Is(err, ErrAlreadyVerified) {
		log.Info("Contract is already verified")
		return nil
	}
	if err != nil {
		return err
	}

	log.WithField("guid", guid).Info("Verification submitted")
	if err := explorer.WaitVerified(ctx, guid); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: guid %s", ErrVerificationTimeout, guid)
		}
		return err
	}
	log.Info("Contract verified")
	return nil
}
