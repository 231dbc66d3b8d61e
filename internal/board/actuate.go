package board

import (
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/errors"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// Actuator drives the mainboard's GPIO surface: sensor power rails and
// the audible alert buzzer.
type Actuator struct {
	log    logger.Logger
	rails  map[string]gpio.PinOut
	buzzer gpio.PinOut
}

// NewActuator resolves the configured pins. Boards without actuation
// pins configured get a nil buzzer and an empty rail set.
func NewActuator(cfg config.ESDKConfig, log logger.Logger) (*Actuator, error) {
	errFactory := errors.New()

	a := &Actuator{
		log:   log,
		rails: make(map[string]gpio.PinOut),
	}

	for rail, pinName := range cfg.PowerPins {
		pin := gpioreg.ByName(pinName)
		if pin == nil {
			return nil, errFactory.WithData(errors.ErrActuation, "unknown power pin "+pinName)
		}
		a.rails[rail] = pin
	}

	if cfg.BuzzerPin != "" {
		pin := gpioreg.ByName(cfg.BuzzerPin)
		if pin == nil {
			return nil, errFactory.WithData(errors.ErrActuation, "unknown buzzer pin "+cfg.BuzzerPin)
		}
		a.buzzer = pin
	}

	return a, nil
}

// SetPower switches one rail. Unknown rails are an error; the caller
// names them in config.
func (a *Actuator) SetPower(rail string, on bool) error {
	pin, ok := a.rails[rail]
	if !ok {
		return errors.New().WithData(errors.ErrActuation, "unknown power rail "+rail)
	}

	level := gpio.Low
	if on {
		level = gpio.High
	}

	if err := pin.Out(level); err != nil {
		return errors.New().Wrap(errors.ErrActuation, err)
	}

	a.log.Debug().Str("rail", rail).Bool("on", on).Msg("Power rail switched")

	return nil
}

// SetBuzzer drives the buzzer at freqHz; zero silences it.
func (a *Actuator) SetBuzzer(freqHz int) error {
	if a.buzzer == nil {
		return errors.New().WithMessage(errors.ErrActuation, "no buzzer pin configured")
	}

	if freqHz <= 0 {
		if err := a.buzzer.Out(gpio.Low); err != nil {
			return errors.New().Wrap(errors.ErrActuation, err)
		}

		return nil
	}

	freq := physic.Frequency(freqHz) * physic.Hertz
	if err := a.buzzer.PWM(gpio.DutyHalf, freq); err != nil {
		return errors.New().Wrap(errors.ErrActuation, err)
	}

	return nil
}
