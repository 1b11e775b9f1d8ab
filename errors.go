package w1therm

import (
	"fmt"
	"strings"
	"unicode"
)

// ErrW1Therm is the root of all errors defined in this file. Every error type below reports
// true for errors.Is(err, ErrW1Therm) so callers can catch them broadly
var ErrW1Therm error = constErr("w1 therm sensor error")

// Sentinel errors that are wrapped and returned by this module
var (
	ErrSensorClosed   error = constErr("thermal sensor is closed")
	ErrMonitorStopped error = constErr("sensor monitor is stopped")
)

// ResetValue is the reading, in millidegree celsius, that a sensor reports after power-on and
// before it has completed its first temperature conversion
const ResetValue = 85000

// Identifier is anything that has a stable sensor identifier, e.g. "28-00000588806a"
type Identifier interface {
	ID() string
}

type constErr string

func (ce constErr) Error() string {
	return string(ce)
}

// KernelModuleLoadError is returned when the w1 therm kernel modules could not be loaded
type KernelModuleLoadError struct {
	msg string
}

// NewKernelModuleLoadError returns a new KernelModuleLoadError
func NewKernelModuleLoadError() *KernelModuleLoadError {
	return &KernelModuleLoadError{msg: "Cannot load w1 therm kernel modules"}
}

func (e *KernelModuleLoadError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *KernelModuleLoadError) Is(target error) bool { return target == ErrW1Therm }

// NoSensorFoundError is returned when no sensor could be found on the bus
type NoSensorFoundError struct {
	msg string
}

// NewNoSensorFoundError returns a new NoSensorFoundError whose message is the given message
// followed by hints about wiring and configuration
func NewNoSensorFoundError(message string) *NoSensorFoundError {
	msg := message + "\n" +
		"Please check cabling and check your /boot/config.txt for\n" +
		"dtoverlay=w1-gpio"
	return &NoSensorFoundError{msg: strings.TrimRightFunc(msg, unicode.IsSpace)}
}

func (e *NoSensorFoundError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *NoSensorFoundError) Is(target error) bool { return target == ErrW1Therm }

// SensorNotReadyError is returned when a sensor was read before its temperature conversion
// completed. Callers typically retry after a short delay
type SensorNotReadyError struct {
	// Sensor is the sensor that was not ready. It is the same value given to the constructor
	Sensor Identifier
	msg    string
}

// NewSensorNotReadyError returns a new SensorNotReadyError for the given sensor, which must
// not be nil
func NewSensorNotReadyError(sensor Identifier) *SensorNotReadyError {
	return &SensorNotReadyError{
		Sensor: sensor,
		msg:    fmt.Sprintf("Sensor %s is not yet ready to read temperature", sensor.ID()),
	}
}

func (e *SensorNotReadyError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *SensorNotReadyError) Is(target error) bool { return target == ErrW1Therm }

// UnsupportedUnitError is returned when an unknown temperature unit is requested
type UnsupportedUnitError struct {
	msg string
}

// NewUnsupportedUnitError returns a new UnsupportedUnitError
func NewUnsupportedUnitError() *UnsupportedUnitError {
	return &UnsupportedUnitError{msg: "Only Degrees C, F and Kelvin are currently supported"}
}

func (e *UnsupportedUnitError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *UnsupportedUnitError) Is(target error) bool { return target == ErrW1Therm }

// UnsupportedSensorError is returned when an unknown sensor type is requested
type UnsupportedSensorError struct {
	SensorName string
	Supported  []string
	msg        string
}

// NewUnsupportedSensorError returns a new UnsupportedSensorError. The given list of supported
// sensors is copied
func NewUnsupportedSensorError(sensorName string, supportedSensors []string) *UnsupportedSensorError {
	supported := append([]string{}, supportedSensors...)
	return &UnsupportedSensorError{
		SensorName: sensorName,
		Supported:  supported,
		msg: fmt.Sprintf(
			"The sensor %s is not supported. Use one of: %s",
			sensorName, strings.Join(supported, ", "),
		),
	}
}

func (e *UnsupportedSensorError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *UnsupportedSensorError) Is(target error) bool { return target == ErrW1Therm }

// ResetValueError is returned when a sensor yields the power-on reset value, which usually
// points to an insufficient power supply
type ResetValueError struct {
	SensorID string
	msg      string
}

// NewResetValueError returns a new ResetValueError for the sensor with the given id
func NewResetValueError(sensorID string) *ResetValueError {
	return &ResetValueError{
		SensorID: sensorID,
		msg: fmt.Sprintf(
			"Sensor %s yields the reset value of %d degree millicelsius.\n"+
				"Please check the power-supply for the sensor.",
			sensorID, ResetValue/1000,
		),
	}
}

func (e *ResetValueError) Error() string { return e.msg }

// Is reports whether target is ErrW1Therm
func (e *ResetValueError) Is(target error) bool { return target == ErrW1Therm }

