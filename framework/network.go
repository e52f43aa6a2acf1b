package framework

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	ArbitrumOne     = "arbitrumOne"
	ArbitrumSepolia = "arbitrumSepolia"

	// SolidityVersion is the compiler every deployed artifact must be built with.
	SolidityVersion = "0.8.27"

	infuraProjectPlaceholder = "{projectId}"
)

var (
	ErrUnknownNetwork   = errors.New("unknown network")
	ErrMissingProjectID = errors.New("missing infura project id")
)

// Network is the static description of a deployment target.
type Network struct {
	Name    string
	ChainID int64
	// RPCURL may contain {projectId}, filled from INFURA_PROJECT_ID.
	RPCURL     string
	APIURL     string
	BrowserURL string
}

var networks = map[string]Network{
	ArbitrumOne: {
		Name:       ArbitrumOne,
		ChainID:    42161,
		RPCURL:     "https://arbitrum-mainnet.infura.io/v3/" + infuraProjectPlaceholder,
		APIURL:     "https://api.arbiscan.io/api",
		BrowserURL: "https://arbiscan.io",
	},
	ArbitrumSepolia: {
		Name:       ArbitrumSepolia,
		ChainID:    421614,
		RPCURL:     "https://arbitrum-sepolia.infura.io/v3/" + infuraProjectPlaceholder,
		APIURL:     "https://api-sepolia.arbiscan.io/api",
		BrowserURL: "https://sepolia.arbiscan.io",
	},
}

// LookupNetwork returns the network registered under name.
func LookupNetwork(name string) (Network, error) {
	n, ok := networks[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownNetwork, name, strings.Join(NetworkNames(), ", "))
	}
	return n, nil
}

// NetworkNames lists registered networks in a stable order.
func NetworkNames() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint resolves the RPC URL for the given project id.
func (n Network) Endpoint(projectID string) (string, error) {
	if !strings.Contains(n.RPCURL, infuraProjectPlaceholder) {
		return n.RPCURL, nil
	}
	if projectID == "" {
		return "", ErrMissingProjectID
	}
	return strings.ReplaceAll(n.RPCURL, infuraProjectPlaceholder, projectID), nil
}

// AddressURL links to addr on the network's block explorer.
func (n Network) AddressURL(addr string) string {
	if n.BrowserURL == "" {
		return ""
	}
	return strings.TrimRight(n.BrowserURL, "/") + "/address/" + addr
}
