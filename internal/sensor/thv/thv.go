// Package thv drives the ESDK-THV board (SHT31 temperature/humidity plus
// SGP40 VOC sensor).
package thv

import (
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/bus"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/sensor"
)

const (
	Version = "THV0.2"

	AddrSHT = 0x44
	AddrSGP = 0x59

	// The SHT31 needs up to 15ms for a high-repeatability measurement;
	// the original firmware allows a generous margin.
	measureDelay = 500 * time.Millisecond
	vocDelay     = 30 * time.Millisecond
)

// Mod handles interfacing with the ESDK-THV board.
type Mod struct {
	bus bus.Bus
	log logger.Logger

	// delays are fields so tests can shorten them
	measureDelay time.Duration
	vocDelay     time.Duration
}

func New(b bus.Bus, log logger.Logger) (*Mod, error) {
	return &Mod{
		bus:          b,
		log:          log,
		measureDelay: measureDelay,
		vocDelay:     vocDelay,
	}, nil
}

func (m *Mod) Key() string {
	return "thv"
}

// crc8 implements the CRC used by Sensirion sensors: polynomial 0x31,
// initialization 0xFF.
func crc8(data ...byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

func (m *Mod) readTempAndHumidityRaw() (rawTemp, rawHumidity uint16, err error) {
	// High repeatability measurement without clock stretching
	if err := m.bus.WriteBlock(AddrSHT, 0x24, 0x00); err != nil {
		return 0, 0, err
	}

	time.Sleep(m.measureDelay)

	raw, err := m.bus.ReadBlock(AddrSHT, 0x00, 6)
	if err != nil {
		return 0, 0, err
	}

	rawTemp = uint16(raw[0])<<8 | uint16(raw[1])
	rawHumidity = uint16(raw[3])<<8 | uint16(raw[4])

	return rawTemp, rawHumidity, nil
}

// ReadTempAndHumidity returns converted temperature and relative humidity.
func (m *Mod) ReadTempAndHumidity() (temperature, humidity float64, err error) {
	rawTemp, rawHumidity, err := m.readTempAndHumidityRaw()
	if err != nil {
		return 0, 0, err
	}

	// Conversions from the SHT31 datasheet, section 4.13
	temperature = sensor.Round(-45+(175*float64(rawTemp)/65535.0), 1)
	humidity = sensor.Round(100*float64(rawHumidity)/65535.0, 1)

	return temperature, humidity, nil
}

// ReadVocRaw returns the SGP40's humidity-compensated raw VOC signal.
func (m *Mod) ReadVocRaw() (int, error) {
	rawTemp, rawHumidity, err := m.readTempAndHumidityRaw()
	if err != nil {
		return 0, err
	}

	tempHi, tempLo := byte(rawTemp>>8), byte(rawTemp&0xFF)
	humHi, humLo := byte(rawHumidity>>8), byte(rawHumidity&0xFF)

	cmd := []byte{
		0x26, 0x0F,
		humHi, humLo, crc8(humHi, humLo),
		tempHi, tempLo, crc8(tempHi, tempLo),
	}

	// Write, then read after a delay, as per datasheet
	if err := m.bus.Tx(AddrSGP, cmd, nil); err != nil {
		return 0, err
	}

	time.Sleep(m.vocDelay)

	buf := make([]byte, 3)
	if err := m.bus.Tx(AddrSGP, nil, buf); err != nil {
		return 0, err
	}

	if crc8(buf[0], buf[1]) != buf[2] {
		return 0, errors.New().New(errors.ErrBadChecksum)
	}

	return int(buf[0])<<8 | int(buf[1]), nil
}

func (m *Mod) Read() (sensor.Values, error) {
	temperature, humidity, err := m.ReadTempAndHumidity()
	if err != nil {
		return nil, err
	}

	voc, err := m.ReadVocRaw()
	if err != nil {
		return nil, err
	}

	return sensor.Values{
		"sensor":      Version,
		"temperature": temperature,
		"humidity":    humidity,
		"vocRaw":      voc,
	}, nil
}
