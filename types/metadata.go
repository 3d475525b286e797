package types

import (
	"fmt"
)

// MetadataSpec is the metadata format version served to clients.
const MetadataSpec = "ft-1.0.0"

// Metadata is the descriptive token record. Immutable after construction and
// not part of the ledger invariants.
type Metadata struct {
	Spec     string `json:"spec" yaml:"spec"`
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Decimals uint32 `json:"decimals" yaml:"decimals"`
}

// Validate checks the metadata record before it is committed at construction
func (m *Metadata) Validate() error {
	if m.Spec != MetadataSpec {
		return fmt.Errorf("unsupported metadata spec %q, want %q", m.Spec, MetadataSpec)
	}
	if m.Name == "" {
		return fmt.Errorf("metadata name cannot be empty")
	}
	if m.Symbol == "" {
		return fmt.Errorf("metadata symbol cannot be empty")
	}
	if m.Decimals > 38 {
		return fmt.Errorf("metadata decimals %d out of range", m.Decimals)
	}
	return nil
}
