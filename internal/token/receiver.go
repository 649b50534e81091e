package token

import "github.com/Klingon-tech/klingnet-token/pkg/types"

// Receiver is the hook a receiving party runs before a notify-transfer is
// finalized. It returns how much of the transferred amount it does not
// want to keep. The hook observes its balance already credited; any error
// resolves the transfer as a full refund.
type Receiver interface {
	OnTransfer(sender types.AccountID, amount types.Amount, payload []byte) (unused types.Amount, err error)
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(sender types.AccountID, amount types.Amount, payload []byte) (types.Amount, error)

// OnTransfer calls f.
func (f ReceiverFunc) OnTransfer(sender types.AccountID, amount types.Amount, payload []byte) (types.Amount, error) {
	return f(sender, amount, payload)
}

// SetReceiver installs the hook invoked when account receives a
// notify-transfer. Accounts without a hook resolve notify-transfers as
// full refunds.
func (c *Contract) SetReceiver(account types.AccountID, r Receiver) {
	c.receivers[account] = r
}

// RemoveReceiver uninstalls an account's hook.
func (c *Contract) RemoveReceiver(account types.AccountID) {
	delete(c.receivers, account)
}

// dispatch delivers the hook call and translates the result into an
// Outcome. Delivery failures (no hook installed, or the hook errors) are
// not operation failures: they resolve as a full refund.
func (c *Contract) dispatch(sender, receiver types.AccountID, amount types.Amount, payload []byte) Outcome {
	r, ok := c.receivers[receiver]
	if !ok {
		c.logger.Debug().
			Str("receiver", receiver.String()).
			Msg("No receiver hook installed, refunding in full")
		return Outcome{Delivered: false}
	}

	unused, err := r.OnTransfer(sender, amount, payload)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("receiver", receiver.String()).
			Msg("Receiver hook failed, refunding in full")
		return Outcome{Delivered: false}
	}
	return Outcome{Delivered: true, Unused: unused}
}
