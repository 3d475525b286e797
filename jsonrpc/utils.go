package jsonrpc

// JSON-RPC Method name constants
const (
	// Token read methods
	MethodFtBalanceOf    = "ft.balanceof"
	MethodFtTotalSupply  = "ft.totalsupply"
	MethodFtMaxSupply    = "ft.maxsupply"
	MethodFtMetadata     = "ft.metadata"
	MethodFtOwner        = "ft.owner"
	MethodFtStorageUsage = "ft.storageusage"

	// Token submit methods
	MethodFtTransfer     = "ft.transfer"
	MethodFtRegister     = "ft.register"
	MethodFtUnregister   = "ft.unregister"
	MethodFtMint         = "ft.mint"
	MethodFtBurn         = "ft.burn"
	MethodFtSetOwner     = "ft.setowner"
	MethodFtSetMaxSupply = "ft.setmaxsupply"

	// Health methods
	MethodHealthCheck = "health.check"
)

// JSON-RPC application error codes, one per ledger error code
const (
	rpcCodeInternal                   = -32000
	rpcCodeNotAuthorized              = -32001
	rpcCodeOverflow                   = -32002
	rpcCodeUnderflow                  = -32003
	rpcCodeInsufficientBalance        = -32004
	rpcCodeAccountNotRegistered       = -32005
	rpcCodeAccountNotEmpty            = -32006
	rpcCodeSelfTransfer               = -32007
	rpcCodeZeroAmount                 = -32008
	rpcCodeStorageDepositInsufficient = -32009
	rpcCodeInvalidAttachedDeposit     = -32010
	rpcCodeInvalidAddress             = -32011
	rpcCodeAlreadyInitialized         = -32012
	rpcCodeInvalidParams              = -32602
)
