package node

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
)

// EventLog persists ledger events as an append-only, sequence-numbered
// record stream. External indexers replay it to reconstruct the ledger.
type EventLog struct {
	db   storage.DB
	next uint64
}

// NewEventLog opens an event log over db, resuming after the highest
// persisted sequence number.
func NewEventLog(db storage.DB) (*EventLog, error) {
	var next uint64
	err := db.ForEach(nil, func(key, _ []byte) error {
		if len(key) != 8 {
			return fmt.Errorf("corrupt event key: %d bytes", len(key))
		}
		seq := binary.BigEndian.Uint64(key)
		if seq >= next {
			next = seq + 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &EventLog{db: db, next: next}, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Append persists an event under the next sequence number.
func (l *EventLog) Append(e event.Event) error {
	rec := event.Record{Seq: l.next, Event: e}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("event marshal: %w", err)
	}
	if err := l.db.Put(seqKey(l.next), data); err != nil {
		return err
	}
	l.next++
	return nil
}

// Len returns the number of persisted events.
func (l *EventLog) Len() uint64 {
	return l.next
}

// Range returns up to limit records starting at sequence from, in order.
func (l *EventLog) Range(from uint64, limit int) ([]event.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	records := make([]event.Record, 0, limit)
	for seq := from; seq < l.next && len(records) < limit; seq++ {
		data, err := l.db.Get(seqKey(seq))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var rec event.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("event unmarshal at seq %d: %w", seq, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
