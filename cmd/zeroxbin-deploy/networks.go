package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeroxbin/deploy/framework"
)

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the networks contracts can be deployed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHAIN ID\tRPC\tEXPLORER")
			for _, name := range framework.NetworkNames() {
				n, err := framework.LookupNetwork(name)
				if err != nil {
					return err
				}
				marker := ""
				if name == a.cfg.Network {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%d\t%s\t%s\n", name, marker, n.ChainID, redactRPC(n.RPCURL), n.BrowserURL)
			}
			return w.Flush()
		},
	}
}

// redactRPC keeps the project id placeholder rather than printing a credential.
func redactRPC(url string) string {
	if i := strings.LastIndex(url, "/v3/"); i >= 0 {
		return url[:i] + "/v3/<INFURA_PROJECT_ID>"
	}
	return url
}
