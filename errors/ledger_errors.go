package errors

import (
	"ftn/jsonx"
)

// LedgerErrorCode represents standardized error codes for ledger operations
type LedgerErrorCode string

const (
	// General errors
	ErrCodeInternal           LedgerErrorCode = "internal_error"
	ErrCodeAlreadyInitialized LedgerErrorCode = "already_initialized"

	// Validation errors
	ErrCodeInvalidAddress = "invalid_address"
	ErrCodeZeroAmount     = "zero_amount"

	// Authorization errors
	ErrCodeNotAuthorized          = "not_authorized"
	ErrCodeInvalidAttachedDeposit = "invalid_attached_deposit"

	// Balance and supply errors
	ErrCodeOverflow             = "overflow"
	ErrCodeUnderflow            = "underflow"
	ErrCodeInsufficientBalance  = "insufficient_balance"
	ErrCodeAccountNotRegistered = "account_not_registered"
	ErrCodeAccountNotEmpty      = "account_not_empty"
	ErrCodeSelfTransfer         = "self_transfer_not_allowed"

	// Storage accounting errors
	ErrCodeStorageDepositInsufficient = "storage_deposit_insufficient"
)

// LedgerError represents a standardized ledger error
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	err, _ := jsonx.Marshal(LedgerError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgNotAuthorized              = "Caller is not the contract owner"
	ErrMsgAlreadyInitialized         = "Ledger state already initialized"
	ErrMsgOverflow                   = "Amount would exceed the supply cap or numeric range"
	ErrMsgUnderflow                  = "Total supply underflow, ledger state is inconsistent"
	ErrMsgInsufficientBalance        = "Not enough balance in the account"
	ErrMsgAccountNotRegistered       = "Account is not registered"
	ErrMsgAccountNotEmpty            = "Account still holds a balance"
	ErrMsgSelfTransfer               = "Sender and recipient must differ"
	ErrMsgZeroAmount                 = "Amount is invalid or zero"
	ErrMsgStorageDepositInsufficient = "Attached deposit does not cover storage growth (need %s, attached %s)"
	ErrMsgInvalidAttachedDeposit     = "Exactly one attached payment unit is required to confirm this call"
	ErrMsgInvalidAddress             = "Account identifier is invalid"
	ErrMsgInternal                   = "Internal ledger error, please report"
)

// NewError creates a new LedgerError and returns it as error interface
func NewError(code LedgerErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the ledger error code from err, or ErrCodeInternal for
// errors that did not originate from the ledger core.
func CodeOf(err error) LedgerErrorCode {
	if err == nil {
		return ""
	}
	if le, ok := err.(*LedgerError); ok {
		return le.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given ledger error code.
func Is(err error, code LedgerErrorCode) bool {
	return CodeOf(err) == code
}
