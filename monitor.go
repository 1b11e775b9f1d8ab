package w1therm

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ThermoSensor is a 1-Wire digital thermometer
type ThermoSensor interface {
	// ID returns the identifier of this sensor, e.g. "28-00000588806a"
	ID() string
	// Type returns the model of this sensor
	Type() SensorType
	// Temperature returns the current temperature reading of this sensor in the given unit. If
	// the sensor is closed, it should return ErrSensorClosed
	Temperature(unit Unit) (float64, error)
	io.Closer
}

// Reading is a single temperature measurement taken from a sensor
type Reading struct {
	SensorID   string
	SensorType SensorType
	Value      float64
	Unit       Unit
	Time       time.Time
}

// Monitor periodically reads temperatures from a set of sensors and hands every successful
// reading to a callback
type Monitor struct {
	name       string
	sensors    []ThermoSensor
	unit       Unit
	onReading  func(Reading) `deep:"-"`
	pollPeriod time.Duration
	isStopped  chan struct{}
	closeMutex sync.Mutex
	logger     *zap.Logger
}

// New returns a new monitor. For details about configs, options, and defaults, see the
// documentation for types 'Config' and 'Option'
func New(config *Config, options ...Option) (*Monitor, error) {

	if config == nil {
		return nil, errNoConfig
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m := &Monitor{
		name:       "monitor/" + config.Sensors[0].ID(),
		sensors:    append([]ThermoSensor{}, config.Sensors...),
		unit:       config.Unit,
		onReading:  config.OnReading,
		pollPeriod: 1 * time.Second,
		isStopped:  make(chan struct{}),
		logger:     zap.NewNop(),
	}
	for _, applyOption := range options {
		if applyOption == nil {
			continue
		}
		applyOption(m)
	}

	return m, nil
}

// Start continuously reads temperatures and passes them to the configured callback. If the
// monitor is stopped, it returns ErrMonitorStopped. It always returns a non-nil error
func (m *Monitor) Start() error {

	defer func() {
		cerr := m.Stop()
		if errors.Is(cerr, ErrMonitorStopped) {
			return
		}
		if cerr != nil {
			m.logger.Error(
				"failed to properly stop monitor after encountering an error",
				zap.Error(cerr), zap.String("monitor_name", m.name),
			)
		}
		m.logger.Info("stopped monitor", zap.String("monitor_name", m.name))
	}()

	m.logger.Info(
		"started monitor",
		zap.String("monitor_name", m.name),
		zap.Int("sensor_count", len(m.sensors)),
		zap.Stringer("unit", m.unit),
	)

loop:
	for ; ; time.Sleep(m.pollPeriod) {

		select {
		case <-m.isStopped:
			break loop
		default:
		}

		readings, err := m.Poll()
		if err != nil {
			return fmt.Errorf("polling sensors: %w", err)
		}
		for _, r := range readings {
			m.onReading(r)
		}
	}

	return ErrMonitorStopped
}

// Poll reads every sensor once. Sensors that fail are logged and skipped. An error is returned
// only if all sensors fail, in which case it holds one error per sensor
func (m *Monitor) Poll() ([]Reading, error) {

	var (
		readings []Reading
		errs     multiErrs
	)

	for _, sensor := range m.sensors {
		temp, err := sensor.Temperature(m.unit)
		if err != nil {
			err = fmt.Errorf("thermo sensor '%s': %w", sensor.ID(), err)
			errs = append(errs, err)
			continue
		}
		readings = append(readings, Reading{
			SensorID:   sensor.ID(),
			SensorType: sensor.Type(),
			Value:      temp,
			Unit:       m.unit,
			Time:       time.Now(),
		})
	}

	if len(errs) == len(m.sensors) {
		return nil, errs
	}
	for _, e := range errs {
		var notReady *SensorNotReadyError
		if errors.As(e, &notReady) {
			m.logger.Warn("sensor not ready", zap.Error(e), zap.String("monitor_name", m.name))
			continue
		}
		m.logger.Error("failed to read temperature", zap.Error(e), zap.String("monitor_name", m.name))
	}

	return readings, nil
}

// Stop stops monitoring and releases all held resources. It is safe to call it multiple times
// by multiple go routines as subsequent calls will return ErrMonitorStopped with no side effects
func (m *Monitor) Stop() error {
	m.closeMutex.Lock()
	defer m.closeMutex.Unlock()

	select {
	case <-m.isStopped:
		return ErrMonitorStopped
	default:
		close(m.isStopped)
	}

	var errs multiErrs
	for _, sensor := range m.sensors {
		if err := sensor.Close(); err != nil {
			err = fmt.Errorf("error closing sensor '%s': %w", sensor.ID(), err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Name returns the name of this monitor
func (m *Monitor) Name() string {
	return m.name
}

type multiErrs []error

func (me multiErrs) Error() string {
	if len(me) == 1 {
		return me[0].Error()
	}
	var sb strings.Builder
	for _, err := range me {
		fmt.Fprintf(&sb, "\n  - %s", err)
	}
	return sb.String()
}

// Unwrap lets errors.Is and errors.As inspect every aggregated error
func (me multiErrs) Unwrap() []error {
	return me
}
