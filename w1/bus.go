package w1

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/malkhamis/w1therm"
	"go.uber.org/zap"
)

// DefaultBaseDir is where the kernel exposes devices found on the 1-Wire bus
const DefaultBaseDir = "/sys/bus/w1/devices"

// kernel modules needed by the w1_therm driver, in load order
var kernelModules = []string{"w1-gpio", "w1-therm"}

// Bus discovers and opens the thermometers attached to the 1-Wire bus
type Bus struct {
	baseDir           string
	loadModules       bool
	moduleLoadTimeout time.Duration
	sensorOptions     []Option                  `deep:"-"`
	modprobe          func(module string) error `deep:"-"`
	logger            *zap.Logger
}

// NewBus returns a new bus. If option 'OptLoadKernelModules' is set, the kernel modules are
// loaded before returning. For details about options and defaults, see the documentation for
// type 'BusOption'
func NewBus(options ...BusOption) (*Bus, error) {

	bus := &Bus{
		baseDir:           DefaultBaseDir,
		moduleLoadTimeout: 10 * time.Second,
		modprobe:          modprobe,
		logger:            zap.NewNop(),
	}
	for _, applyOption := range options {
		if applyOption == nil {
			continue
		}
		applyOption(bus)
	}

	if bus.loadModules {
		if err := bus.LoadKernelModules(); err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// LoadKernelModules loads the w1-gpio and w1-therm kernel modules unless the base directory
// already exists, then waits for the base directory to appear. If it does not appear within
// the module load timeout, it returns *w1therm.KernelModuleLoadError
func (b *Bus) LoadKernelModules() error {

	if isDir(b.baseDir) {
		return nil
	}

	for _, module := range kernelModules {
		if err := b.modprobe(module); err != nil {
			b.logger.Warn("failed to load kernel module", zap.String("module", module), zap.Error(err))
			continue
		}
		b.logger.Info("loaded kernel module", zap.String("module", module))
	}

	for deadline := time.Now().Add(b.moduleLoadTimeout); ; time.Sleep(100 * time.Millisecond) {
		if isDir(b.baseDir) {
			return nil
		}
		if time.Now().After(deadline) {
			return w1therm.NewKernelModuleLoadError()
		}
	}
}

// Available returns the ids of all sensors of the given types that are attached to the bus,
// sorted. If no types are given, all supported types are considered
func (b *Bus) Available(types ...w1therm.SensorType) ([]string, error) {

	if len(types) == 0 {
		types = w1therm.SensorTypes()
	}
	families := make(map[byte]bool, len(types))
	for _, st := range types {
		families[st.Family()] = true
	}

	entries, err := ioutil.ReadDir(b.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, w1therm.NewNoSensorFoundError(fmt.Sprintf("No 1-Wire bus found at '%s'", b.baseDir))
	}
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		family, ok := familyOf(entry.Name())
		if !ok || !families[family] {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	return ids, nil
}

// Open opens the sensor with the given id. The id may be given with or without its family
// prefix, e.g. "28-00000588806a" or "00000588806a". If id is empty, the first available sensor
// of the given type is opened. If st is zero, any supported type matches. If no matching sensor
// is attached to the bus, it returns *w1therm.NoSensorFoundError
func (b *Bus) Open(id string, st w1therm.SensorType) (*Sensor, error) {

	var types []w1therm.SensorType
	if st != 0 {
		types = append(types, st)
	}
	available, err := b.Available(types...)
	if err != nil {
		return nil, err
	}

	fullID, found := matchID(available, id)
	if !found {
		return nil, w1therm.NewNoSensorFoundError(noSensorMessage(id, st))
	}

	options := b.sensorOptions
	if st != 0 {
		options = append(append([]Option{}, options...), OptType(st))
	}
	sensor, err := New(filepath.Join(b.baseDir, fullID), options...)
	if err != nil {
		return nil, fmt.Errorf("sensor '%s': %w", fullID, err)
	}

	b.logger.Info(
		"opened thermo sensor",
		zap.String("id", sensor.ID()),
		zap.Stringer("type", sensor.Type()),
	)
	return sensor, nil
}

// OpenAll opens every sensor of the given types attached to the bus. If no types are given, all
// supported types are considered. If no sensor is found, it returns *w1therm.NoSensorFoundError
func (b *Bus) OpenAll(types ...w1therm.SensorType) ([]*Sensor, error) {

	ids, err := b.Available(types...)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, w1therm.NewNoSensorFoundError(noSensorMessage("", 0))
	}

	var sensors []*Sensor
	for _, id := range ids {
		sensor, err := New(filepath.Join(b.baseDir, id), b.sensorOptions...)
		if err != nil {
			for _, s := range sensors {
				_ = s.Close()
			}
			return nil, fmt.Errorf("sensor '%s': %w", id, err)
		}
		b.logger.Info(
			"opened thermo sensor",
			zap.String("id", sensor.ID()),
			zap.Stringer("type", sensor.Type()),
		)
		sensors = append(sensors, sensor)
	}

	return sensors, nil
}

// BaseDir returns the directory under which devices are looked up
func (b *Bus) BaseDir() string {
	return b.baseDir
}

// SensorTypeOf returns the sensor type that the family prefix of a sensor id maps to
func SensorTypeOf(id string) (w1therm.SensorType, bool) {
	family, ok := familyOf(id)
	if !ok {
		return 0, false
	}
	return w1therm.SensorTypeFromFamily(family)
}

func matchID(available []string, id string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	if id == "" {
		return available[0], true
	}
	for _, candidate := range available {
		if candidate == id || strings.HasSuffix(candidate, "-"+id) {
			return candidate, true
		}
	}
	return "", false
}

func noSensorMessage(id string, st w1therm.SensorType) string {
	kind := "temperature sensor"
	if st != 0 {
		kind = st.String() + " " + kind
	}
	if id == "" {
		return "No " + kind + " found"
	}
	return fmt.Sprintf("Could not find %s with id '%s'", kind, id)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func modprobe(module string) error {
	out, err := exec.Command("modprobe", module).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return err
		}
		return fmt.Errorf("%w: %s", err, msg)
	}
	return nil
}
