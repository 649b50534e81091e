package storage

import "strings"

// Overlay stages writes on top of a base DB without touching it. Reads see
// the staged state; Commit applies the staged writes to the base in one
// pass, and dropping the Overlay discards them. The overlay also tracks the
// net change in persisted footprint (len(key)+len(value) per entry), which
// is what storage-cost settlement is charged against.
//
// An Overlay is not safe for concurrent use; the contract serializes
// operations, so exactly one overlay is live at a time.
type Overlay struct {
	base DB
	// writes holds staged values; nil marks a staged deletion.
	writes map[string][]byte
	delta  int64
}

// NewOverlay creates an empty overlay over base.
func NewOverlay(base DB) *Overlay {
	return &Overlay{
		base:   base,
		writes: make(map[string][]byte),
	}
}

// entrySize returns the current footprint of key in the staged view,
// or 0 if absent.
func (o *Overlay) entrySize(key []byte) (int64, error) {
	if v, staged := o.writes[string(key)]; staged {
		if v == nil {
			return 0, nil
		}
		return int64(len(key) + len(v)), nil
	}
	v, err := o.base.Get(key)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(len(key) + len(v)), nil
}

// Get retrieves a value from the staged view.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	if v, staged := o.writes[string(key)]; staged {
		if v == nil {
			return nil, ErrNotFound
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return o.base.Get(key)
}

// Put stages a key-value pair.
func (o *Overlay) Put(key, value []byte) error {
	old, err := o.entrySize(key)
	if err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	o.writes[string(key)] = v
	o.delta += int64(len(key)+len(value)) - old
	return nil
}

// Delete stages a deletion.
func (o *Overlay) Delete(key []byte) error {
	old, err := o.entrySize(key)
	if err != nil {
		return err
	}
	o.writes[string(key)] = nil
	o.delta -= old
	return nil
}

// Has checks if a key exists in the staged view.
func (o *Overlay) Has(key []byte) (bool, error) {
	if v, staged := o.writes[string(key)]; staged {
		return v != nil, nil
	}
	return o.base.Has(key)
}

// ForEach iterates over the staged view: base entries not shadowed by a
// staged write, then staged non-deleted entries. Iteration order is
// unspecified, matching the DB contract.
func (o *Overlay) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	err := o.base.ForEach(prefix, func(key, value []byte) error {
		if _, staged := o.writes[string(key)]; staged {
			return nil
		}
		return fn(key, value)
	})
	if err != nil {
		return err
	}
	p := string(prefix)
	for k, v := range o.writes {
		if v == nil || !strings.HasPrefix(k, p) {
			continue
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the base DB manages its own lifecycle.
func (o *Overlay) Close() error {
	return nil
}

// UsageDelta returns the net footprint change of the staged writes in bytes.
// Negative when the staged state is smaller than the base.
func (o *Overlay) UsageDelta() int64 {
	return o.delta
}

// Commit applies the staged writes to the base DB and resets the overlay.
// A partially failed commit leaves the base in an undefined intermediate
// state; callers treat commit errors as fatal.
func (o *Overlay) Commit() error {
	for k, v := range o.writes {
		if v == nil {
			if err := o.base.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := o.base.Put([]byte(k), v); err != nil {
			return err
		}
	}
	o.writes = make(map[string][]byte)
	o.delta = 0
	return nil
}
