package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"ftn/logx"
)

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open genesis config %s: %w", path, err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("could not decode genesis config %s: %w", path, err)
	}

	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis config: owner=%s, symbol=%s, max_supply=%s",
		cfgFile.Genesis.Owner, cfgFile.Genesis.Metadata.Symbol, cfgFile.Genesis.MaxSupply))
	return &cfgFile.Genesis, nil
}

type StorageConfig struct {
	PricePerByte uint64 `ini:"price_per_byte"`
}

type RPCConfig struct {
	Listen string `ini:"listen"`
}

type MonitoringConfig struct {
	Listen  string `ini:"listen"`
	Enabled bool   `ini:"enabled"`
}

// LoadStorageConfig reads storage pricing from an .ini file
func LoadStorageConfig(path string) (*StorageConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	storageSection := cfg.Section("storage")
	storageCfg := &StorageConfig{}
	err = storageSection.MapTo(storageCfg)
	if err != nil {
		return nil, err
	}
	return storageCfg, nil
}

// LoadRPCConfig reads the JSON-RPC listen address from an .ini file
func LoadRPCConfig(path string) (*RPCConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	rpcSection := cfg.Section("rpc")
	rpcCfg := &RPCConfig{Listen: DefaultRPCListen}
	err = rpcSection.MapTo(rpcCfg)
	if err != nil {
		return nil, err
	}
	return rpcCfg, nil
}

// LoadMonitoringConfig reads the metrics listen address from an .ini file
func LoadMonitoringConfig(path string) (*MonitoringConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	monitoringSection := cfg.Section("monitoring")
	monitoringCfg := &MonitoringConfig{Listen: DefaultMonitoringListen}
	err = monitoringSection.MapTo(monitoringCfg)
	if err != nil {
		return nil, err
	}
	return monitoringCfg, nil
}
