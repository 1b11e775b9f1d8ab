// Package w1 provides an implementation of the w1therm.ThermoSensor interface that is backed by
// the sysfs interface of the w1_therm kernel driver, along with discovery of sensors on the bus
package w1

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/malkhamis/w1therm"
)

// compile-time check for interface implementation and dependency inversion
var _ w1therm.ThermoSensor = (*Sensor)(nil)

// Errors returned by this package in addition to the ones defined in package w1therm
var (
	ErrInvalidResolution = errors.New("resolution must be between 9 and 12 bits")
	errMalformedPayload  = errors.New("malformed w1_slave payload")
)

// Sensor represents a 1-Wire thermometer backed by its 'w1_slave' file. Instances of this type
// are safe for concurrent use
type Sensor struct {
	id         string
	typ        w1therm.SensorType
	slavePath  string
	devFile    rdOnlyFile `deep:"-"`
	retries    int
	retryDelay time.Duration
	allowReset bool
	mutex      sync.Mutex
	closed     bool
}

// New returns a new sensor for the given sensor directory, which typically looks like
// '/sys/bus/w1/devices/28-00000588806a'. The sensor type is inferred from the family code that
// prefixes the directory name unless option 'OptType' is given. The underlying 'w1_slave' file
// will remain open until Close() is called. For details about options and defaults, see the
// documentation for type 'Option'
func New(dir string, options ...Option) (*Sensor, error) {

	id := filepath.Base(filepath.Clean(dir))
	slavePath := filepath.Join(dir, "w1_slave")

	devFile, err := os.OpenFile(slavePath, os.O_RDONLY, os.ModePerm)
	if err != nil {
		return nil, err
	}

	sensor := &Sensor{
		id:         id,
		slavePath:  slavePath,
		devFile:    devFile,
		retries:    10,
		retryDelay: 100 * time.Millisecond,
	}
	sensor.typ, _ = SensorTypeOf(id)
	for _, applyOption := range options {
		if applyOption == nil {
			continue
		}
		applyOption(sensor)
	}

	if sensor.typ == 0 {
		_ = devFile.Close()
		return nil, w1therm.NewUnsupportedSensorError(id, w1therm.SensorTypeNames())
	}

	return sensor, nil
}

// Temperature returns the current temperature in the given unit. If the conversion is not
// complete after all retries, it returns *w1therm.SensorNotReadyError. If the sensor yields
// the power-on reset value, it returns *w1therm.ResetValueError. If the sensor is closed, it
// returns w1therm.ErrSensorClosed. Concurrent calls to this method by multiple go routines
// will be serialized
func (s *Sensor) Temperature(unit w1therm.Unit) (float64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, err := s.rawTemperature()
	if err != nil {
		return 0, err
	}
	return unit.FromMilliCelsius(raw), nil
}

// Raw returns the current temperature in millidegrees celsius as reported by the kernel
func (s *Sensor) Raw() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.rawTemperature()
}

// Resolution returns the conversion resolution of the sensor in bits, in the range [9, 12]
func (s *Sensor) Resolution() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.resolution()
}

// SetResolution sets the conversion resolution of the sensor. bits must be in the range
// [9, 12]. If persist is true, the resolution is also copied to the sensor's EEPROM so it
// survives a power cycle. Writing to the sensor usually requires root privileges
func (s *Sensor) SetResolution(bits int, persist bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.setResolution(bits, persist)
}

// Close closes this sensor and releases held resources. If the sensor was previously closed, it
// returns w1therm.ErrSensorClosed
func (s *Sensor) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.close()
}

// ID returns the identifier of this sensor, which is the name of its sysfs directory
func (s *Sensor) ID() string {
	return s.id
}

// Type returns the model of this sensor
func (s *Sensor) Type() w1therm.SensorType {
	return s.typ
}

func (s *Sensor) String() string {
	return fmt.Sprintf("%s(%s)", s.typ, s.id)
}
