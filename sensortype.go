package w1therm

import (
	"fmt"
	"strings"
)

// SensorType is a model of 1-Wire digital thermometer that the w1_therm kernel driver
// supports. The zero value is not a valid sensor type
type SensorType int

// Supported sensor types
const (
	DS18S20 SensorType = iota + 1
	DS1822
	DS18B20
	DS1825
	DS28EA00
	MAX31850K
)

type sensorTypeInfo struct {
	name   string
	family byte
}

// DS1825 and MAX31850K share a family code
var sensorTypeInfos = map[SensorType]sensorTypeInfo{
	DS18S20:   {name: "DS18S20", family: 0x10},
	DS1822:    {name: "DS1822", family: 0x22},
	DS18B20:   {name: "DS18B20", family: 0x28},
	DS1825:    {name: "DS1825", family: 0x3B},
	DS28EA00:  {name: "DS28EA00", family: 0x42},
	MAX31850K: {name: "MAX31850K", family: 0x3B},
}

// SensorTypes returns all supported sensor types in a stable order
func SensorTypes() []SensorType {
	return []SensorType{DS18S20, DS1822, DS18B20, DS1825, DS28EA00, MAX31850K}
}

// SensorTypeNames returns the names of all supported sensor types in the same order as
// SensorTypes()
func SensorTypeNames() []string {
	types := SensorTypes()
	names := make([]string, 0, len(types))
	for _, st := range types {
		names = append(names, st.String())
	}
	return names
}

// ParseSensorType returns the sensor type with the given name, e.g. "DS18B20". Matching is
// case-insensitive. Unknown names result in an error of type *UnsupportedSensorError
func ParseSensorType(name string) (SensorType, error) {
	for _, st := range SensorTypes() {
		if strings.EqualFold(st.String(), strings.TrimSpace(name)) {
			return st, nil
		}
	}
	return 0, NewUnsupportedSensorError(name, SensorTypeNames())
}

// SensorTypeFromFamily returns the first sensor type whose family code equals the given code
func SensorTypeFromFamily(family byte) (SensorType, bool) {
	for _, st := range SensorTypes() {
		if st.Family() == family {
			return st, true
		}
	}
	return 0, false
}

// Family returns the 1-Wire family code of this sensor type
func (st SensorType) Family() byte {
	return sensorTypeInfos[st].family
}

// Slug returns the family code as it prefixes sensor directories in sysfs, e.g. "28"
func (st SensorType) Slug() string {
	return fmt.Sprintf("%02x", st.Family())
}

func (st SensorType) String() string {
	info, ok := sensorTypeInfos[st]
	if !ok {
		return fmt.Sprintf("SensorType(%d)", int(st))
	}
	return info.name
}
