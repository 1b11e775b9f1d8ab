package w1

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/malkhamis/w1therm"
)

// command understood by w1_therm to copy the scratchpad to EEPROM
const cmdCopyScratchpad = "0x48"

type rdOnlyFile interface {
	io.ReadSeeker
	io.Closer
}

// payload is the parsed content of a w1_slave file, e.g.
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
type payload struct {
	scratchpad []byte
	crcOK      bool
	milliDegC  int
}

func parsePayload(data string) (payload, error) {

	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) < 2 {
		return payload{}, fmt.Errorf("%w: expected 2 lines, got %d", errMalformedPayload, len(lines))
	}

	var p payload
	p.crcOK = strings.HasSuffix(strings.TrimSpace(lines[0]), "YES")

	hexBytes := lines[0]
	if i := strings.Index(hexBytes, ":"); i >= 0 {
		hexBytes = hexBytes[:i]
	}
	for _, field := range strings.Fields(hexBytes) {
		b, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return payload{}, fmt.Errorf("%w: scratchpad byte %q: %v", errMalformedPayload, field, err)
		}
		p.scratchpad = append(p.scratchpad, byte(b))
	}

	i := strings.LastIndex(lines[1], "t=")
	if i < 0 {
		return payload{}, fmt.Errorf("%w: no temperature value", errMalformedPayload)
	}
	temp, err := strconv.Atoi(strings.TrimSpace(lines[1][i+2:]))
	if err != nil {
		return payload{}, fmt.Errorf("%w: temperature value: %v", errMalformedPayload, err)
	}
	p.milliDegC = temp

	return p, nil
}

// resolution decodes the conversion resolution from the configuration register
func (p payload) resolution() (int, error) {
	if len(p.scratchpad) < 5 {
		return 0, fmt.Errorf("%w: scratchpad too short", errMalformedPayload)
	}
	return int((p.scratchpad[4]>>5)&0x03) + 9, nil
}

func (s *Sensor) readPayload() (payload, error) {

	if _, err := s.devFile.Seek(0, 0); err != nil {
		return payload{}, err
	}
	data, err := ioutil.ReadAll(s.devFile)
	if err != nil {
		return payload{}, err
	}
	return parsePayload(string(data))
}

// readyPayload reads the sensor until its CRC check passes, retrying at most s.retries times
func (s *Sensor) readyPayload() (payload, error) {

	if s.closed {
		return payload{}, w1therm.ErrSensorClosed
	}

	for attempt := 0; ; attempt++ {
		p, err := s.readPayload()
		if err != nil {
			return payload{}, err
		}
		if p.crcOK {
			return p, nil
		}
		if attempt >= s.retries {
			return payload{}, w1therm.NewSensorNotReadyError(s)
		}
		time.Sleep(s.retryDelay)
	}
}

func (s *Sensor) rawTemperature() (int, error) {

	p, err := s.readyPayload()
	if err != nil {
		return 0, err
	}
	if p.milliDegC == w1therm.ResetValue && !s.allowReset {
		return 0, w1therm.NewResetValueError(s.id)
	}
	return p.milliDegC, nil
}

func (s *Sensor) resolution() (int, error) {

	p, err := s.readyPayload()
	if err != nil {
		return 0, err
	}
	return p.resolution()
}

func (s *Sensor) setResolution(bits int, persist bool) error {

	if s.closed {
		return w1therm.ErrSensorClosed
	}
	if bits < 9 || bits > 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidResolution, bits)
	}

	if err := writeSlave(s.slavePath, strconv.Itoa(bits)); err != nil {
		return fmt.Errorf("writing resolution: %w", err)
	}
	if !persist {
		return nil
	}
	if err := writeSlave(s.slavePath, cmdCopyScratchpad); err != nil {
		return fmt.Errorf("persisting resolution: %w", err)
	}
	return nil
}

func writeSlave(filename, value string) error {

	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(value)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

func (s *Sensor) close() error {
	if s.closed {
		return w1therm.ErrSensorClosed
	}
	s.closed = true

	if err := s.devFile.Close(); err != nil {
		return fmt.Errorf("failed to close device file while closing sensor: %w", err)
	}

	return nil
}

// familyOf returns the family code that prefixes a sensor id like "28-00000588806a"
func familyOf(id string) (byte, bool) {
	i := strings.Index(id, "-")
	if i <= 0 {
		return 0, false
	}
	family, err := strconv.ParseUint(id[:i], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(family), true
}
