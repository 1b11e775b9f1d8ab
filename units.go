package w1therm

import "strings"

// Unit is a unit of measurement for temperature readings
type Unit int

// Supported units. The zero value is Celsius, which is what the kernel driver reports (in
// millidegrees)
const (
	Celsius Unit = iota
	Fahrenheit
	Kelvin
)

// ParseUnit returns the unit named by s. Matching is case-insensitive and accepts both the
// full name and the single letter symbol, e.g. "kelvin" and "K". Unknown units result in an
// error of type *UnsupportedUnitError
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	case "k", "kelvin":
		return Kelvin, nil
	}
	return Celsius, NewUnsupportedUnitError()
}

// FromCelsius converts the given temperature in degrees celsius to this unit
func (u Unit) FromCelsius(degC float64) float64 {
	switch u {
	case Fahrenheit:
		return degC*9.0/5.0 + 32.0
	case Kelvin:
		return degC + 273.15
	default:
		return degC
	}
}

// FromMilliCelsius converts the given temperature in millidegrees celsius to this unit
func (u Unit) FromMilliCelsius(mDegC int) float64 {
	return u.FromCelsius(float64(mDegC) / 1000.0)
}

func (u Unit) valid() bool {
	return u == Celsius || u == Fahrenheit || u == Kelvin
}

// String returns the lowercase name of the unit
func (u Unit) String() string {
	switch u {
	case Celsius:
		return "celsius"
	case Fahrenheit:
		return "fahrenheit"
	case Kelvin:
		return "kelvin"
	default:
		return "unknown"
	}
}

// Symbol returns the short symbol of the unit, e.g. "°C"
func (u Unit) Symbol() string {
	switch u {
	case Celsius:
		return "°C"
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "?"
	}
}
