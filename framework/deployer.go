package framework

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

var (
	ErrDeploymentReverted = errors.New("contract creation reverted")
	ErrChainIDMismatch    = errors.New("rpc endpoint serves a different chain")
)

// Backend is the subset of an RPC client the deployer needs to submit a
// creation transaction and follow it until it is mined.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to an RPC endpoint. The returned client satisfies Backend.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return client, nil
}

type DeploymentRequest struct {
	// ContractName is a plain or fully qualified ("src/X.sol:X") contract name.
	ContractName    string
	ConstructorArgs []string
}

// DeploymentResult only exists once the creation transaction is mined with
// success status and the new address holds code.
type DeploymentResult struct {
	ContractAddress common.Address
	TxHash          common.Hash
	Receipt         *types.Receipt
}

type DeployerConfig struct {
	ArtifactsDir string
	ChainID      int64
	// GasLimit of 0 lets the node estimate.
	GasLimit uint64
}

type Deployer struct {
	backend      Backend
	key          *PrivKey
	chainID      *big.Int
	artifactsDir string
	gasLimit     uint64
	log          *logrus.Entry
}

func NewDeployer(log *logrus.Entry, backend Backend, key *PrivKey, cfg DeployerConfig) *Deployer {
	return &Deployer{
		backend:      backend,
		key:          key,
		chainID:      big.NewInt(cfg.ChainID),
		artifactsDir: cfg.ArtifactsDir,
		gasLimit:     cfg.GasLimit,
		log:          log.WithField("deployer", key.Address().Hex()),
	}
}

func (d *Deployer) Address() common.Address {
	return d.key.Address()
}

// Deploy creates one new contract instance and blocks until it is confirmed.
// Every call submits a fresh transaction; nothing is reused between calls.
func (d *Deployer) Deploy(ctx context.Context, req DeploymentRequest) (*DeploymentResult, error) {
	log := d.log.WithField("contract", req.ContractName)

	artifact, err := FindArtifact(d.artifactsDir, req.ContractName)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	args, err := ParseConstructorArgs(artifact.Abi.Constructor.Inputs, req.ConstructorArgs)
	if err != nil {
		return nil, fmt.Errorf("%s constructor: %w", artifact.ContractName, err)
	}

	if err := d.checkChainID(ctx); err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(d.key.Priv, d.chainID)
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = d.gasLimit

	log.WithField("artifact", artifact.Path).Info("Submitting contract creation")
	addr, tx, _, err := bind.DeployContract(opts, *artifact.Abi, artifact.Code, d.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("submit deployment: %w", err)
	}

	log = log.WithField("tx", tx.Hash().Hex())
	log.WithField("address", addr.Hex()).Info("Waiting for confirmation")

	receipt, err := bind.WaitMined(ctx, d.backend, tx)
	if err != nil {
		// the transaction may still be mined after we stop waiting
		log.WithError(err).Warn("Stopped waiting for confirmation")
		return nil, fmt.Errorf("wait for confirmation of %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s in block %s", ErrDeploymentReverted, tx.Hash().Hex(), receipt.BlockNumber)
	}

	code, err := d.backend.CodeAt(ctx, receipt.ContractAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("read deployed code: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", bind.ErrNoCodeAfterDeploy, receipt.ContractAddress.Hex())
	}

	log.WithField("block", receipt.BlockNumber).WithField("gasUsed", receipt.GasUsed).Info("Contract confirmed")
	return &DeploymentResult{
		ContractAddress: receipt.ContractAddress,
		TxHash:          tx.Hash(),
		Receipt:         receipt,
	}, nil
}

func (d *Deployer) checkChainID(ctx context.Context) error {
	reader, ok := d.backend.(chainIDReader)
	if !ok {
		return nil
	}
	remote, err := reader.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id: %w", err)
	}
	if remote.Cmp(d.chainID) != 0 {
		return fmt.Errorf("%w: expected %s, endpoint reports %s", ErrChainIDMismatch, d.chainID, remote)
	}
	return nil
}
