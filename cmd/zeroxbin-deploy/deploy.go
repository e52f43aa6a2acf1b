package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeroxbin/deploy/framework"
)

const (
	defaultContract = "ZeroxBin"
	defaultLabel    = "0xBin"
)

func newDeployCmd(a *app) *cobra.Command {
	var (
		contract string
		label    string
		ctorArgs []string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a new contract instance and print its address",
		Long: `Deploy submits one contract creation transaction signed with PRIVATE_KEY,
waits until it is mined and prints "<label> deployed to: <address>".
Constructor arguments default to DEV_ADDRESS when no --arg is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.deploy(cmd.Context(), contract, label, ctorArgs)
		},
	}

	cmd.Flags().StringVar(&contract, "contract", defaultContract, "contract name or fully qualified name in the artifacts directory")
	cmd.Flags().StringVar(&label, "label", defaultLabel, "label printed with the deployed address")
	cmd.Flags().StringArrayVar(&ctorArgs, "arg", nil, "constructor argument, repeat in constructor order")
	return cmd
}

func (a *app) deploy(ctx context.Context, contract, label string, ctorArgs []string) error {
	cfg := a.cfg
	if err := cfg.ValidateDeploy(); err != nil {
		return err
	}
	if len(ctorArgs) == 0 && cfg.DevAddress != "" {
		ctorArgs = []string{cfg.DevAddress}
	}

	network, err := cfg.ResolveNetwork()
	if err != nil {
		return err
	}
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return err
	}
	key, err := framework.ParsePrivKey(cfg.PrivateKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConfirmTimeout)
	defer cancel()

	log := a.log.WithField("network", network.Name)
	backend, err := a.dial(ctx, endpoint)
	if err != nil {
		return err
	}
	if closer, ok := backend.(interface{ Close() }); ok {
		defer closer.Close()
	}

	deployer := framework.NewDeployer(log, backend, key, framework.DeployerConfig{
		ArtifactsDir: cfg.ArtifactsDir,
		ChainID:      network.ChainID,
		GasLimit:     cfg.GasLimit,
	})

	result, err := deployer.Deploy(ctx, framework.DeploymentRequest{
		ContractName:    contract,
		ConstructorArgs: ctorArgs,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%s deployed to: %s\n", label, result.ContractAddress.Hex())
	if url := network.AddressURL(result.ContractAddress.Hex()); url != "" {
		log.WithField("url", url).Info("View on explorer")
	}
	return nil
}
