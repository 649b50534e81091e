package token

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-token/internal/ledger"
	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

// intentMarker is the deposit a transfer call must attach, as an explicit
// statement of intent. It is consumed, not refunded.
var intentMarker = types.NewAmount(1)

// requireIntentMarker enforces the one-unit attached deposit on transfers.
func requireIntentMarker(call Call) error {
	if call.Deposit.Cmp(intentMarker) != 0 {
		return fmt.Errorf("%w, attached %s", ErrExplicitIntentRequired, call.Deposit)
	}
	return nil
}

// TransferResult reports the outcome of a simple transfer.
type TransferResult struct {
	Refund types.Amount
}

// Transfer atomically moves amount from the caller to receiver and emits a
// transfer event. Success is the absence of failure; the result carries
// only the storage settlement's refund (zero for a pure balance move).
func (c *Contract) Transfer(call Call, receiver types.AccountID, amount types.Amount, memo string) (TransferResult, error) {
	if err := requireIntentMarker(call); err != nil {
		return TransferResult{}, err
	}

	settlement, err := c.mutate(types.Amount{}, func(ov storage.DB, rec *event.Recorder) error {
		if err := ledger.New(ov).Transfer(call.Caller, receiver, amount); err != nil {
			return err
		}
		rec.Record(event.Transfer(call.Caller, receiver, amount, memo))
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	c.logger.Info().
		Str("sender", call.Caller.String()).
		Str("receiver", receiver.String()).
		Str("amount", amount.String()).
		Msg("Transfer")
	return TransferResult{Refund: settlement.Refund}, nil
}

// IntentID identifies an in-flight notify-transfer.
type IntentID uint64

// intent is the ephemeral state of one notify-transfer: the amount has
// already moved to the receiver, and resolution decides how much comes
// back. Intents live only for the duration of one logical operation and
// are never persisted.
type intent struct {
	sender   types.AccountID
	receiver types.AccountID
	amount   types.Amount
	memo     string
	payload  []byte
}

// Outcome is the receiver hook's declaration of how much of the transferred
// amount it did not use. Delivered is false when the hook could not be
// invoked at all, which resolves as a full refund.
type Outcome struct {
	Delivered bool
	Unused    types.Amount
}

// InitiateNotifyTransfer optimistically moves amount from the caller to
// receiver and records a pending intent. The receiver's hook observes its
// balance already credited. The returned IntentID must later be passed to
// ResolveNotifyTransfer exactly once.
func (c *Contract) InitiateNotifyTransfer(call Call, receiver types.AccountID, amount types.Amount, memo string, payload []byte) (IntentID, error) {
	if err := requireIntentMarker(call); err != nil {
		return 0, err
	}

	_, err := c.mutate(types.Amount{}, func(ov storage.DB, rec *event.Recorder) error {
		if err := ledger.New(ov).Transfer(call.Caller, receiver, amount); err != nil {
			return err
		}
		rec.Record(event.Transfer(call.Caller, receiver, amount, memo))
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.nextIntent++
	id := c.nextIntent
	c.intents[id] = &intent{
		sender:   call.Caller,
		receiver: receiver,
		amount:   amount,
		memo:     memo,
		payload:  payload,
	}

	c.logger.Debug().
		Uint64("intent", uint64(id)).
		Str("sender", call.Caller.String()).
		Str("receiver", receiver.String()).
		Str("amount", amount.String()).
		Msg("Notify-transfer initiated")
	return id, nil
}

// ResolveNotifyTransfer settles a pending intent against the receiver
// hook's outcome and returns the amount the receiver kept.
//
// The declared unused amount is clamped to the transferred amount, and the
// actual refund is clamped to whatever the receiver still holds; if third
// parties drained the receiver's balance before resolution, the shortfall
// is accepted, not an error. A refund whose sender has since unregistered
// is burned instead of credited.
func (c *Contract) ResolveNotifyTransfer(id IntentID, outcome Outcome) (types.Amount, error) {
	it, ok := c.intents[id]
	if !ok {
		return types.Amount{}, fmt.Errorf("resolve intent %d: %w", id, ErrUnknownIntent)
	}
	delete(c.intents, id)

	unused := it.amount
	if outcome.Delivered {
		unused = outcome.Unused.Min(it.amount)
	}

	var refund types.Amount
	if !unused.IsZero() {
		receiverBal, err := ledger.New(c.state).BalanceOf(it.receiver)
		if err != nil {
			return types.Amount{}, err
		}
		refund = unused.Min(receiverBal)
	}

	if !refund.IsZero() {
		_, err := c.mutate(types.Amount{}, func(ov storage.DB, rec *event.Recorder) error {
			led := ledger.New(ov)
			senderRegistered, err := led.IsRegistered(it.sender)
			if err != nil {
				return err
			}
			if !senderRegistered {
				// The sender vanished mid-flight; the refund has
				// nowhere to go and is destroyed.
				if err := led.Burn(it.receiver, refund); err != nil {
					return err
				}
				rec.Record(event.Burn(it.receiver, refund, "refund to unregistered sender"))
				return nil
			}
			if err := led.Transfer(it.receiver, it.sender, refund); err != nil {
				return err
			}
			rec.Record(event.Transfer(it.receiver, it.sender, refund, "refund"))
			return nil
		})
		if err != nil {
			return types.Amount{}, err
		}
	}

	used, _ := it.amount.Sub(refund)
	c.logger.Info().
		Uint64("intent", uint64(id)).
		Str("used", used.String()).
		Str("refunded", refund.String()).
		Msg("Notify-transfer resolved")
	return used, nil
}

// NotifyResult reports the outcome of a notify-transfer.
type NotifyResult struct {
	// UsedAmount is how much of the transfer the receiver kept.
	UsedAmount types.Amount
	Refund     types.Amount
}

/// TransferAndNotify runs the full two-phase protocol: optimistic credit,
// receiver hook dispatch, and resolution. An unregistered receiver fails
// the initiation; a receiver with no reachable hook resolves as a full
// refund.
func (c *Contract) TransferAndNotify(call Call, receiver types.AccountID, amount types.Amount, memo string, payload []byte) (NotifyResult, error) {
	id, err := c.InitiateNotifyTransfer(call, receiver, amount, memo, payload)
	if err != nil {
		return NotifyResult{}, err
	}

	outcome := c.dispatch(call.Caller, receiver, amount, payload)

	used, err := c.ResolveNotifyTransfer(id, outcome)
	if err != nil {
		return NotifyResult{}, err
	}
	refund, _ := amount.Sub(used)
	return NotifyResult{UsedAmount: used, Refund: refund}, nil
}
