// Package testchain provides an in-process chain for deployment tests.
package testchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainID is the id the simulated backend signs and validates with.
const ChainID = 1337

const blockGasLimit = 30_000_000

// Chain mines a block as soon as a transaction is sent.
type Chain struct {
	*backends.SimulatedBackend
}

// Funds is the starting balance of every account passed to New.
var Funds = new(big.Int).Mul(big.NewInt(1_000), big.NewInt(1e18))

func New(t testing.TB, accounts ...common.Address) *Chain {
	t.Helper()

	alloc := core.GenesisAlloc{}
	for _, addr := range accounts {
		alloc[addr] = core.GenesisAccount{Balance: new(big.Int).Set(Funds)}
	}
	sim := backends.NewSimulatedBackend(alloc, blockGasLimit)
	t.Cleanup(func() { _ = sim.Close() })

	return &Chain{SimulatedBackend: sim}
}

func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.Commit()
	return nil
}
