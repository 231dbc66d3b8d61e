package thv

import (
	"testing"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus/bustest"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC8(t *testing.T) {
	// Reference vector from the Sensirion datasheets
	assert.Equal(t, byte(0x92), crc8(0xBE, 0xEF))
	assert.Equal(t, byte(0xAC), crc8(0x00))
}

func fakeTHV(vocResponse []byte) *bustest.Bus {
	return &bustest.Bus{
		ReadBlockFn: func(addr uint16, _ byte, length int) ([]byte, error) {
			// Raw temperature 0x6666 -> 25.0C, humidity 0x8000 -> 50.0%
			return []byte{0x66, 0x66, 0x00, 0x80, 0x00, 0x00}, nil
		},
		TxFn: func(addr uint16, w, r []byte) error {
			if addr == AddrSGP && len(r) == 3 {
				copy(r, vocResponse)
			}
			return nil
		},
	}
}

func TestReadTempAndHumidity(t *testing.T) {
	m := &Mod{bus: fakeTHV(nil)}

	temperature, humidity, err := m.ReadTempAndHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temperature, 0.05)
	assert.InDelta(t, 50.0, humidity, 0.05)
}

func TestReadVocRaw(t *testing.T) {
	m := &Mod{bus: fakeTHV([]byte{0x12, 0x34, crc8(0x12, 0x34)})}

	voc, err := m.ReadVocRaw()
	require.NoError(t, err)
	assert.Equal(t, 0x1234, voc)
}

func TestReadVocRawBadChecksum(t *testing.T) {
	m := &Mod{bus: fakeTHV([]byte{0x12, 0x34, 0x00})}

	_, err := m.ReadVocRaw()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadChecksum))
}
