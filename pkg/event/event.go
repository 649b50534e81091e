// Package event defines the structured ledger events consumed by external
// indexers. Every balance mutation emits one of mint, transfer or burn, and
// together the records are sufficient to reconstruct the ledger.
package event

import "github.com/Klingon-tech/klingnet-token/pkg/types"

// Event type tags.
const (
	TypeMint     = "mint"
	TypeTransfer = "transfer"
	TypeBurn     = "burn"
)

// Event is a single ledger event record.
type Event struct {
	Type string `json:"type"`

	// Mint: the account credited with the initial supply.
	Owner types.AccountID `json:"owner,omitempty"`

	// Transfer legs.
	Sender   types.AccountID `json:"sender,omitempty"`
	Receiver types.AccountID `json:"receiver,omitempty"`

	// Burn: the account whose balance was destroyed.
	Account types.AccountID `json:"account,omitempty"`

	Amount types.Amount `json:"amount"`
	Memo   string       `json:"memo,omitempty"`
}

// Mint builds a mint event.
func Mint(owner types.AccountID, amount types.Amount, memo string) Event {
	return Event{Type: TypeMint, Owner: owner, Amount: amount, Memo: memo}
}

// Transfer builds a transfer event.
func Transfer(sender, receiver types.AccountID, amount types.Amount, memo string) Event {
	return Event{Type: TypeTransfer, Sender: sender, Receiver: receiver, Amount: amount, Memo: memo}
}

// Burn builds a burn event.
func Burn(account types.AccountID, amount types.Amount, memo string) Event {
	return Event{Type: TypeBurn, Account: account, Amount: amount, Memo: memo}
}

// Record is an event together with its position in the persisted log.
type Record struct {
	Seq uint64 `json:"seq"`
	Event
}

// Sink receives events produced by ledger operations. Events are delivered
// only after the producing operation has committed.
type Sink interface {
	Record(e Event)
}

// Recorder is a Sink that appends events to an in-memory slice.
type Recorder struct {
	Events []Event
}

// Record appends an event.
func (r *Recorder) Record(e Event) {
	r.Events = append(r.Events, e)
}

// Drain returns the recorded events and resets the recorder.
func (r *Recorder) Drain() []Event {
	out := r.Events
	r.Events = nil
	return out
}
