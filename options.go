package w1therm

import (
	"time"

	"go.uber.org/zap"
)

// Option is used to pass optional parameters to the Monitor factory function
type Option func(*Monitor)

// OptPollPeriod is the waiting time between two rounds of readings. If d is less than or equal
// to zero, it is set to the default value
//
// (default: 1 second)
func OptPollPeriod(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.pollPeriod = d
		}
	}
}

// OptLogger is the logger that will be used by the monitor. If logger is nil, it is set to the
// default value
//
// (default: noop logger)
func OptLogger(logger *zap.Logger) Option {
	return func(m *Monitor) {
		if logger == nil {
			logger = zap.NewNop()
		}
		m.logger = logger
	}
}

// OptName sets the name of the monitor. if name is empty, it is set to the default value
//
// (default: "monitor/<id of first sensor>")
func OptName(name string) Option {
	return func(m *Monitor) {
		if name != "" {
			m.name = name
		}
	}
}
