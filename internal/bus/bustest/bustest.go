// Package bustest provides a scripted in-memory bus for driver tests.
package bustest

import (
	"sync"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
)

// Op records one bus operation.
type Op struct {
	Kind     string // "writeByte", "writeBlock", "readBlock", "tx"
	Addr     uint16
	Register byte
	Data     []byte
}

// Bus implements bus.Bus with per-operation hooks. A nil hook succeeds and
// returns zeroed bytes. All operations are recorded in order.
type Bus struct {
	WriteByteFn  func(addr uint16, value byte) error
	WriteBlockFn func(addr uint16, register byte, data []byte) error
	ReadBlockFn  func(addr uint16, register byte, length int) ([]byte, error)
	TxFn         func(addr uint16, w, r []byte) error

	mu  sync.Mutex
	ops []Op
}

var _ bus.Bus = (*Bus)(nil)

func (b *Bus) record(op Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
}

// Ops returns a copy of all recorded operations.
func (b *Bus) Ops() []Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Op, len(b.ops))
	copy(out, b.ops)

	return out
}

// OpsForAddr returns the recorded operations against one address.
func (b *Bus) OpsForAddr(addr uint16) []Op {
	var out []Op
	for _, op := range b.Ops() {
		if op.Addr == addr {
			out = append(out, op)
		}
	}

	return out
}

func (b *Bus) WriteByte(addr uint16, value byte) error {
	b.record(Op{Kind: "writeByte", Addr: addr, Data: []byte{value}})
	if b.WriteByteFn != nil {
		return b.WriteByteFn(addr, value)
	}

	return nil
}

func (b *Bus) WriteBlock(addr uint16, register byte, data ...byte) error {
	b.record(Op{Kind: "writeBlock", Addr: addr, Register: register, Data: data})
	if b.WriteBlockFn != nil {
		return b.WriteBlockFn(addr, register, data)
	}

	return nil
}

func (b *Bus) ReadBlock(addr uint16, register byte, length int) ([]byte, error) {
	b.record(Op{Kind: "readBlock", Addr: addr, Register: register})
	if b.ReadBlockFn != nil {
		return b.ReadBlockFn(addr, register, length)
	}

	return make([]byte, length), nil
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.record(Op{Kind: "tx", Addr: addr, Data: append([]byte(nil), w...)})
	if b.TxFn != nil {
		return b.TxFn(addr, w, r)
	}
	for i := range r {
		r[i] = 0
	}

	return nil
}

func (b *Bus) Close() error {
	return nil
}
