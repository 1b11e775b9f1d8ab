package w1therm

import "errors"

// internal errors defined to ease testing
var (
	errNoConfig    = errors.New("no configuration given")
	errNoSensors   = errors.New("no thermal sensors given")
	errNilSensor   = errors.New("a given sensor cannot be nil")
	errNoOnReading = errors.New("no reading callback given")
)

// Config is used to pass configuration to the monitor factory function
type Config struct {
	// Sensors are used to obtain temperature readings periodically
	Sensors []ThermoSensor
	// Unit is the unit in which temperatures are read
	Unit Unit
	// OnReading is called with every successful reading. Calls are made sequentially from the
	// go routine running Monitor.Start()
	OnReading func(Reading)
}

func (c *Config) validate() error {
	if len(c.Sensors) == 0 {
		return errNoSensors
	}
	for _, sensor := range c.Sensors {
		if sensor == nil {
			return errNilSensor
		}
	}
	if !c.Unit.valid() {
		return NewUnsupportedUnitError()
	}
	if c.OnReading == nil {
		return errNoOnReading
	}
	return nil
}
