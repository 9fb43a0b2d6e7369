package network

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	vgcrypto "github.com/abstract-foundation/agw-session-keys/libs/crypto"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TestnetChainID is the chain ID of the Abstract testnet.
	TestnetChainID uint64 = 11124
	// MainnetChainID is the chain ID of the Abstract mainnet.
	MainnetChainID uint64 = 2741

	// DefaultValidatorAddress is the address of the session key validator
	// module of the Abstract Global Wallet, deployed on both networks.
	DefaultValidatorAddress = "0x34ca1501FAE231cC2ebc995CE013Dbe882d7d081"
)

var (
	ErrNetworkDoesNotHaveRPCHostConfigured = errors.New("network configuration does not have any RPC host set")
	ErrNetworkNameIsRequired               = errors.New("the network name is required")
	ErrChainIDIsRequired                   = errors.New("the network chain ID is required")
)

type DoesNotExistError struct {
	Name string
}

func NewDoesNotExistError(n string) DoesNotExistError {
	return DoesNotExistError{
		Name: n,
	}
}

func (e DoesNotExistError) Error() string {
	return fmt.Sprintf("network %q does not exist", e.Name)
}

type Network struct {
	Name    string `toml:"name"`
	ChainID uint64 `toml:"chain_id"`
	// ValidatorAddress is the address of the session key validator contract.
	ValidatorAddress string    `toml:"validator_address"`
	API              APIConfig `toml:"api"`
}

type APIConfig struct {
	RPC RPCConfig `toml:"rpc"`
}

type RPCConfig struct {
	Hosts   []string `toml:"hosts"`
	Retries uint64   `toml:"retries"`
}

func (n *Network) EnsureCanConnectRPCNode() error {
	if len(n.API.RPC.Hosts) > 0 && len(n.API.RPC.Hosts[0]) > 0 {
		return nil
	}
	return ErrNetworkDoesNotHaveRPCHostConfigured
}

func (n *Network) Validate() error {
	if n.Name == "" {
		return ErrNetworkNameIsRequired
	}
	if n.ChainID == 0 {
		return ErrChainIDIsRequired
	}
	if _, err := vgcrypto.ParseEthereumAddress(n.ValidatorAddress); err != nil {
		return fmt.Errorf("invalid validator address: %w", err)
	}
	return n.EnsureCanConnectRPCNode()
}

func (n *Network) Validator() common.Address {
	return common.HexToAddress(n.ValidatorAddress)
}

// IsPermissive returns true for the network on which a session that is not
// initialised on-chain yet is considered usable. This is only the case on
// the Abstract testnet. The chain ID must be the one reported by the node,
// never the one from the configuration.
func IsPermissive(chainID *big.Int) bool {
	return chainID != nil && chainID.IsUint64() && chainID.Uint64() == TestnetChainID
}

var knownNetworks = map[string]Network{
	"testnet": {
		Name:             "testnet",
		ChainID:          TestnetChainID,
		ValidatorAddress: DefaultValidatorAddress,
		API: APIConfig{
			RPC: RPCConfig{
				Hosts:   []string{"https://api.testnet.abs.xyz"},
				Retries: 5,
			},
		},
	},
	"mainnet": {
		Name:             "mainnet",
		ChainID:          MainnetChainID,
		ValidatorAddress: DefaultValidatorAddress,
		API: APIConfig{
			RPC: RPCConfig{
				Hosts:   []string{"https://api.mainnet.abs.xyz"},
				Retries: 5,
			},
		},
	},
}

// GetNetwork returns one of the known networks.
func GetNetwork(name string) (Network, error) {
	n, ok := knownNetworks[name]
	if !ok {
		return Network{}, NewDoesNotExistError(name)
	}
	n.API.RPC.Hosts = append([]string{}, n.API.RPC.Hosts...)
	return n, nil
}

func ListNetworks() []string {
	names := make([]string, 0, len(knownNetworks))
	for name := range knownNetworks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
