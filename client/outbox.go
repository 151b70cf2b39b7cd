package client

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/protocol"
)

// OutboxEntry is a publish kept until the broker confirms it.
type OutboxEntry struct {
	ID         uint64
	Publishing Publishing
}

// Outbox stores publishes between send and confirm so that they can be
// replayed after the channel or the process dies.
type Outbox interface {
	Put(p Publishing) (uint64, error)
	Delete(id uint64) error
	// Pending returns the stored entries in the order they were put.
	Pending() ([]OutboxEntry, error)
	Close() error
}

// MemoryOutbox keeps entries in memory. It survives channel failures but
// not the process.
type MemoryOutbox struct {
	mu      sync.Mutex
	next    uint64
	entries map[uint64]Publishing
}

// NewMemoryOutbox creates an empty in-memory outbox.
func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{entries: make(map[uint64]Publishing)}
}

func (o *MemoryOutbox) Put(p Publishing) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	o.entries[o.next] = p
	return o.next, nil
}

func (o *MemoryOutbox) Delete(id uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, id)
	return nil
}

func (o *MemoryOutbox) Pending() ([]OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := slices.Sorted(maps.Keys(o.entries))
	out := make([]OutboxEntry, len(ids))
	for i, id := range ids {
		out[i] = OutboxEntry{ID: id, Publishing: o.entries[id]}
	}
	return out, nil
}

func (o *MemoryOutbox) Close() error { return nil }

const (
	outboxPrefix    = "outbox/"
	outboxSeqKey    = "outbox-seq"
	outboxBandwidth = 128
)

// outboxRecord is the stored form of a Publishing. Properties are kept as an
// encoded content header so that every field type survives the round trip.
type outboxRecord struct {
	Exchange   string `cbor:"1,keyasint"`
	RoutingKey string `cbor:"2,keyasint"`
	Mandatory  bool   `cbor:"3,keyasint,omitempty"`
	Immediate  bool   `cbor:"4,keyasint,omitempty"`
	Header     []byte `cbor:"5,keyasint"`
	Body       []byte `cbor:"6,keyasint"`
}

// BadgerOutbox persists entries in a Badger database.
type BadgerOutbox struct {
	db    *badger.DB
	seq   *badger.Sequence
	codec *protocol.Codec
}

// OpenBadgerOutbox opens the outbox described by cfg.
func OpenBadgerOutbox(cfg config.OutboxConfig) (*BadgerOutbox, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}
	seq, err := db.GetSequence([]byte(outboxSeqKey), outboxBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open outbox sequence: %w", err)
	}
	return &BadgerOutbox{db: db, seq: seq, codec: protocol.NewCodec()}, nil
}

func outboxKey(id uint64) []byte {
	key := make([]byte, len(outboxPrefix)+8)
	copy(key, outboxPrefix)
	binary.BigEndian.PutUint64(key[len(outboxPrefix):], id)
	return key
}

func (o *BadgerOutbox) Put(p Publishing) (uint64, error) {
	n, err := o.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate outbox id: %w", err)
	}
	id := n + 1

	data, err := o.marshal(p)
	if err != nil {
		return 0, err
	}
	err = o.db.Update(func(txn *badger.Txn) error {
		return txn.Set(outboxKey(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store outbox entry: %w", err)
	}
	return id, nil
}

func (o *BadgerOutbox) Delete(id uint64) error {
	return o.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(outboxKey(id))
	})
}

func (o *BadgerOutbox) Pending() ([]OutboxEntry, error) {
	prefix := []byte(outboxPrefix)
	var entries []OutboxEntry

	err := o.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := binary.BigEndian.Uint64(item.Key()[len(prefix):])

			err := item.Value(func(val []byte) error {
				p, err := o.unmarshal(val)
				if err != nil {
					return fmt.Errorf("outbox entry %d: %w", id, err)
				}
				entries = append(entries, OutboxEntry{ID: id, Publishing: p})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

func (o *BadgerOutbox) Close() error {
	if err := o.seq.Release(); err != nil {
		o.db.Close()
		return err
	}
	return o.db.Close()
}

func (o *BadgerOutbox) marshal(p Publishing) ([]byte, error) {
	props := p.Properties
	if props == nil {
		props = protocol.NewBasicProperties()
	}
	header, err := o.codec.Marshal(&protocol.HeaderFrame{
		ClassID:    props.Class().ClassID,
		BodySize:   uint64(len(p.Body)),
		Properties: props,
	})
	if err != nil {
		return nil, err
	}

	data, err := cbor.Marshal(outboxRecord{
		Exchange:   p.Exchange,
		RoutingKey: p.RoutingKey,
		Mandatory:  p.Mandatory,
		Immediate:  p.Immediate,
		Header:     header,
		Body:       p.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox entry: %w", err)
	}
	return data, nil
}

func (o *BadgerOutbox) unmarshal(data []byte) (Publishing, error) {
	var rec outboxRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return Publishing{}, err
	}
	f, err := o.codec.ReadFrame(bytes.NewReader(rec.Header))
	if err != nil {
		return Publishing{}, err
	}
	header, ok := f.(*protocol.HeaderFrame)
	if !ok {
		return Publishing{}, fmt.Errorf("stored header is a %T", f)
	}
	return Publishing{
		Exchange:   rec.Exchange,
		RoutingKey: rec.RoutingKey,
		Mandatory:  rec.Mandatory,
		Immediate:  rec.Immediate,
		Properties: header.Properties,
		Body:       rec.Body,
	}, nil
}
