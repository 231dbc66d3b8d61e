package bus

// Bus is the byte-level access contract for the shared sensor bus. Every
// operation maps to a single bus transaction; implementations serialize
// concurrent callers so one driver's write-then-read is never interleaved
// with another driver's traffic.
type Bus interface {
	// WriteByte writes a single byte to the device at addr.
	WriteByte(addr uint16, value byte) error

	// WriteBlock writes data to a device register.
	WriteBlock(addr uint16, register byte, data ...byte) error

	// ReadBlock reads length bytes from a device register.
	ReadBlock(addr uint16, register byte, length int) ([]byte, error)

	// Tx performs a write followed by a read in one transaction. Either
	// buffer may be empty.
	Tx(addr uint16, w, r []byte) error

	// Close releases the bus handle.
	Close() error
}
