package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeroxbin/deploy/framework"
)

type dialFunc func(ctx context.Context, rpcURL string) (framework.Backend, error)

// app carries what every subcommand shares. cfg and log are set in PersistentPreRunE.
type app struct {
	stdout io.Writer
	stderr io.Writer
	dial   dialFunc

	envFile string
	network string

	cfg *framework.Config
	log *logrus.Entry
}

func newLogger(out io.Writer, level string) (*logrus.Entry, error) {
	log := logrus.NewEntry(logrus.New())
	log.Logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return log, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.Logger.SetLevel(lvl)
	return log, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "zeroxbin-deploy",
		Short:         "Deploy and verify the 0xBin contract on Arbitrum",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := framework.LoadConfig(a.envFile)
			if err != nil {
				return err
			}
			if a.network != "" {
				cfg.Network = a.network
			}
			a.cfg = cfg

			log, err := newLogger(a.stderr, cfg.LogLevel)
			a.log = log
			return err
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load (default ./.env when present)")
	root.PersistentFlags().StringVar(&a.network, "network", "", "target network, overrides NETWORK")

	root.AddCommand(newDeployCmd(a), newVerifyCmd(a), newNetworksCmd(a))
	return root
}

// execute runs the CLI and maps the outcome to a process exit code.
func execute(args []string, stdout, stderr io.Writer, dial dialFunc) int {
	a := &app{stdout: stdout, stderr: stderr, dial: dial}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		log := a.log
		if log == nil {
			log, _ = newLogger(stderr, "info")
		}
		log.WithError(err).Error("zeroxbin-deploy failed")
		return 1
	}
	return 0
}
