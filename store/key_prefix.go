package store

// Declare database key prefix for objects
const (
	PrefixAccount = "account:"

	PrefixState      = "state:"
	StateKeyLedger   = "ledger"
	StateKeyMetadata = "metadata"
)
