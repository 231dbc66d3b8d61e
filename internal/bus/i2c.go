package bus

import (
	"sync"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// i2cBus wraps a periph I2C bus with a mutex so multi-byte transactions
// from different drivers cannot interleave.
type i2cBus struct {
	mu  sync.Mutex
	bus i2c.BusCloser
}

// Open initializes the host and opens the named I2C bus. An empty name
// selects the first available bus. Failure here is fatal to the caller;
// nothing works without the bus.
func Open(name string) (Bus, error) {
	errFactory := errors.New()

	if _, err := host.Init(); err != nil {
		return nil, errFactory.Wrap(errors.ErrBusOpen, err)
	}

	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrBusOpen, err)
	}

	return &i2cBus{bus: b}, nil
}

func (b *i2cBus) WriteByte(addr uint16, value byte) error {
	return b.Tx(addr, []byte{value}, nil)
}

func (b *i2cBus) WriteBlock(addr uint16, register byte, data ...byte) error {
	return b.Tx(addr, append([]byte{register}, data...), nil)
}

func (b *i2cBus) ReadBlock(addr uint16, register byte, length int) ([]byte, error) {
	buf := make([]byte, length)
	if err := b.Tx(addr, []byte{register}, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

func (b *i2cBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.bus.Tx(addr, w, r); err != nil {
		return errors.New().Wrap(errors.ErrBusTransaction, err)
	}

	return nil
}

func (b *i2cBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.bus.Close()
}
