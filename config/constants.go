package config

// Default file locations and listen addresses
const (
	DefaultGenesisPath = "./config/genesis.yml"
	DefaultRuntimePath = "./config/ledger.ini"

	DefaultRPCListen        = ":9001"
	DefaultMonitoringListen = ":9100"
)
