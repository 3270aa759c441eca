package model

import "fmt"

type Network string

var (
	Mainnet Network = "mainnet"
	Preprod Network = "preprod"
	Preview Network = "preview"
)

// UnmarshalFlag validates the network when parsed from command line flags.
func (n *Network) UnmarshalFlag(value string) error {
	switch Network(value) {
	case Mainnet, Preprod, Preview:
		*n = Network(value)
		return nil
	default:
		return fmt.Errorf("unknown network %q", value)
	}
}

// AddressPrefix returns the bech32 human readable part of Shelley payment addresses.
func (n Network) AddressPrefix() string {
	if n == Mainnet {
		return "addr"
	}
	return "addr_test"
}
