package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeroxbin/deploy/framework"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		contract string
		address  string
		ctorArgs []string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Publish a deployed contract's source on the network's block explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.verify(cmd.Context(), contract, address, ctorArgs)
		},
	}

	cmd.Flags().StringVar(&contract, "contract", defaultContract, "contract name or fully qualified name in the artifacts directory")
	cmd.Flags().StringVar(&address, "address", "", "deployed contract address")
	cmd.Flags().StringArrayVar(&ctorArgs, "arg", nil, "constructor argument used at deployment, repeat in order")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func (a *app) verify(ctx context.Context, contract, address string, ctorArgs []string) error {
	cfg := a.cfg
	if err := cfg.ValidateVerify(); err != nil {
		return err
	}
	if len(ctorArgs) == 0 && cfg.DevAddress != "" {
		ctorArgs = []string{cfg.DevAddress}
	}

	addr, err := framework.ParseAddress(address)
	if err != nil {
		return err
	}
	network, err := cfg.ResolveNetwork()
	if err != nil {
		return err
	}
	artifact, err := framework.FindArtifact(cfg.ArtifactsDir, contract)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConfirmTimeout)
	defer cancel()

	log := a.log.WithField("network", network.Name)
	explorer := framework.NewExplorer(log, network, cfg.ArbiscanAPIKey)
	if err := framework.VerifyContract(ctx, log, explorer, artifact, addr, ctorArgs); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, explorer.AddressURL(addr))
	return nil
}
