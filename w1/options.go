package w1

import (
	"time"

	"github.com/malkhamis/w1therm"
	"go.uber.org/zap"
)

// Option is used to pass optional parameters to the Sensor factory function
type Option func(*Sensor)

// OptType sets the sensor type explicitly. If st is not a supported sensor type, the type is
// inferred from the family code of the sensor id
//
// (default: inferred)
func OptType(st w1therm.SensorType) Option {
	return func(s *Sensor) {
		if st.Family() != 0 {
			s.typ = st
		}
	}
}

// OptRetries sets how many times a sensor is re-read while its temperature conversion is not
// yet complete. If n is negative, it is set to the default value
//
// (default: 10)
func OptRetries(n int) Option {
	return func(s *Sensor) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// OptRetryDelay is the waiting time between two attempts to read a sensor that is not ready.
// If d is negative, it is set to the default value
//
// (default: 100 milliseconds)
func OptRetryDelay(d time.Duration) Option {
	return func(s *Sensor) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

// OptAllowResetValue controls whether the power-on reset value (85 degrees celsius) is returned
// as a valid reading instead of an error. Some setups legitimately measure 85 degrees
//
// (default: false)
func OptAllowResetValue(allow bool) Option {
	return func(s *Sensor) {
		s.allowReset = allow
	}
}

// BusOption is used to pass optional parameters to the Bus factory function
type BusOption func(*Bus)

// OptBaseDir sets the directory under which the kernel exposes 1-Wire devices. If dir is empty,
// it is set to the default value
//
// (default: "/sys/bus/w1/devices")
func OptBaseDir(dir string) BusOption {
	return func(b *Bus) {
		if dir != "" {
			b.baseDir = dir
		}
	}
}

// OptLoadKernelModules controls whether the w1-gpio and w1-therm kernel modules are loaded
// when the bus is created
//
// (default: false)
func OptLoadKernelModules(load bool) BusOption {
	return func(b *Bus) {
		b.loadModules = load
	}
}

// OptModuleLoadTimeout is the maximum time to wait for the base directory to appear after
// loading kernel modules. If d is less than or equal to zero, it is set to the default value
//
// (default: 10 seconds)
func OptModuleLoadTimeout(d time.Duration) BusOption {
	return func(b *Bus) {
		if d > 0 {
			b.moduleLoadTimeout = d
		}
	}
}

// OptSensorOptions sets the options that are passed to every sensor opened through the bus
func OptSensorOptions(options ...Option) BusOption {
	return func(b *Bus) {
		b.sensorOptions = append([]Option{}, options...)
	}
}

// OptLogger is the logger that will be used by the bus. If logger is nil, it is set to the
// default value
//
// (default: noop logger)
func OptLogger(logger *zap.Logger) BusOption {
	return func(b *Bus) {
		if logger == nil {
			logger = zap.NewNop()
		}
		b.logger = logger
	}
}
