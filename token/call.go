package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"ftn/errors"
	"ftn/logx"
	"ftn/utils"
)

// CallContext carries the resolved caller identity and the payment attached
// to a verb invocation by the hosting environment.
type CallContext struct {
	Caller   string
	Attached *uint256.Int
}

// NewCallContext builds a call context. A nil attachment reads as zero.
func NewCallContext(caller string, attached *uint256.Int) CallContext {
	if attached == nil {
		attached = uint256.NewInt(0)
	}
	return CallContext{
		Caller:   caller,
		Attached: new(uint256.Int).Set(attached),
	}
}

func (c CallContext) attached() *uint256.Int {
	if c.Attached == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(c.Attached)
}

// ConfirmUnit returns the minimal indivisible payment unit. Attaching exactly
// one unit to an irreversible privileged verb signals explicit caller intent;
// the unit is consumed, not refunded.
func ConfirmUnit() *uint256.Int {
	return uint256.NewInt(1)
}

// requireConfirmUnit enforces the exact one-unit attachment.
func requireConfirmUnit(ctx CallContext) error {
	if !ctx.attached().Eq(ConfirmUnit()) {
		return errors.NewError(errors.ErrCodeInvalidAttachedDeposit, errors.ErrMsgInvalidAttachedDeposit)
	}
	return nil
}

// Refunder returns unused attached payment to the caller. Refunds are a
// required side effect of storage settlement; the implementation is supplied
// by the hosting environment.
type Refunder interface {
	Refund(account string, amount *uint256.Int)
}

// LogRefunder records refunds in the node log. Used where no richer payment
// channel is wired, e.g. the local admin CLI.
type LogRefunder struct{}

func (LogRefunder) Refund(account string, amount *uint256.Int) {
	logx.Info("REFUND", fmt.Sprintf("Refunded %s to @%s", utils.Uint256ToString(amount), account))
}
