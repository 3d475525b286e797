package config

import (
	"ftn/store"
	"ftn/types"
)

// GenesisConfig describes the one-time construction of the token ledger.
type GenesisConfig struct {
	// Owner is the account with exclusive rights to mint, burn, change the
	// cap and transfer ownership.
	Owner string `yaml:"owner"`

	// MaxSupply is the initial supply cap, a base-10 amount string.
	MaxSupply string `yaml:"max_supply"`

	// AutoRegisterRecipients makes transfers create missing recipient
	// accounts, charging the sender for the storage growth.
	AutoRegisterRecipients bool `yaml:"auto_register_recipients"`

	Metadata types.Metadata    `yaml:"metadata"`
	Store    store.StoreConfig `yaml:"store"`
}

// ConfigFile wraps the genesis config under its YAML document key.
type ConfigFile struct {
	Genesis GenesisConfig `yaml:"genesis"`
}
