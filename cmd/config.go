package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/malkhamis/w1therm"
	"github.com/malkhamis/w1therm/w1"

	"go.uber.org/zap"
)

var (
	errNoJsonConfig      = errors.New("no json config data given")
	errNoMonitorConfig   = errors.New("no monitor config in given json data")
	errBadDuration       = errors.New("error parsing string as duration")
	errSensorIDsAndTypes = errors.New("sensor ids and sensor types are mutually exclusive")
)

type config struct {
	BaseDir           string           `json:"base_dir"`
	LoadKernelModules bool             `json:"load_kernel_modules"`
	Monitors          []*configMonitor `json:"monitors"`
	logger            *zap.Logger
}

type configMonitor struct {
	Name            string   `json:"name"`
	Unit            string   `json:"unit"`
	PollPeriod      string   `json:"poll_period"`
	SensorIDs       []string `json:"sensor_ids"`
	SensorTypes     []string `json:"sensor_types"`
	Retries         *int     `json:"retries"`
	RetryDelay      string   `json:"retry_delay"`
	AllowResetValue bool     `json:"allow_reset_value"`
}

func newConfig(jsonData io.Reader, logger *zap.Logger) (*config, error) {

	if jsonData == nil {
		return nil, errNoJsonConfig
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := &config{logger: logger}
	if err := json.NewDecoder(jsonData).Decode(cfg); err != nil {
		return nil, fmt.Errorf("error decoding json config: %w", err)
	}

	for _, m := range cfg.Monitors {
		if m.Unit == "" {
			m.Unit = w1therm.Celsius.String()
		}
	}

	if len(cfg.Monitors) == 0 {
		return nil, errNoMonitorConfig
	}

	return cfg, nil
}

func (c *config) newMonitors() ([]*w1therm.Monitor, error) {

	var monitors []*w1therm.Monitor
	for _, mCfg := range c.Monitors {
		m, err := mCfg.newMonitor(c, c.logger)
		if err != nil {
			for _, created := range monitors {
				_ = created.Stop()
			}
			return nil, fmt.Errorf("monitor '%s': %w", mCfg.Name, err)
		}
		monitors = append(monitors, m)
	}

	c.logger.Info(
		"all monitors were created successfully",
		zap.Int("monitor-count", len(monitors)),
	)
	return monitors, nil
}

func (c *configMonitor) newMonitor(root *config, logger *zap.Logger) (*w1therm.Monitor, error) {

	pollPeriod, err := time.ParseDuration(c.PollPeriod)
	if err != nil && c.PollPeriod != "" {
		return nil, fmt.Errorf("%w: %v", errBadDuration, err)
	}
	// otherwise, it is empty and we assume the zero-value will fallback to default

	unit, err := w1therm.ParseUnit(c.Unit)
	if err != nil {
		return nil, err
	}

	sensors, err := c.newSensors(root)
	if err != nil {
		return nil, fmt.Errorf("failed to create all sensors: %w", err)
	}

	onReading := func(r w1therm.Reading) {
		logger.Info(
			"temperature reading",
			zap.String("monitor", c.Name),
			zap.String("sensor_id", r.SensorID),
			zap.Stringer("sensor_type", r.SensorType),
			zap.Float64("value", r.Value),
			zap.Stringer("unit", r.Unit),
		)
	}

	m, err := w1therm.New(
		&w1therm.Config{
			Sensors:   sensors,
			Unit:      unit,
			OnReading: onReading,
		},
		w1therm.OptName(c.Name),
		w1therm.OptPollPeriod(pollPeriod),
		w1therm.OptLogger(logger),
	)
	if err != nil {
		closeSensors(sensors)
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}

	logger.Info(
		"created monitor",
		zap.String("name", m.Name()),
		zap.String("poll_period", pollPeriod.String()),
		zap.Stringer("unit", unit),
		zap.Int("sensor_count", len(sensors)),
	)
	return m, nil
}

func (c *configMonitor) sensorOptions() ([]w1.Option, error) {

	retryDelay, err := time.ParseDuration(c.RetryDelay)
	if err != nil && c.RetryDelay != "" {
		return nil, fmt.Errorf("%w: %v", errBadDuration, err)
	}
	if c.RetryDelay == "" {
		retryDelay = -1 // falls back to the default
	}

	options := []w1.Option{
		w1.OptRetryDelay(retryDelay),
		w1.OptAllowResetValue(c.AllowResetValue),
	}
	if c.Retries != nil {
		options = append(options, w1.OptRetries(*c.Retries))
	}
	return options, nil
}

func (c *configMonitor) newSensors(root *config) ([]w1therm.ThermoSensor, error) {

	if len(c.SensorIDs) > 0 && len(c.SensorTypes) > 0 {
		return nil, errSensorIDsAndTypes
	}

	types, err := parseSensorTypes(c.SensorTypes)
	if err != nil {
		return nil, err
	}

	options, err := c.sensorOptions()
	if err != nil {
		return nil, err
	}

	bus, err := w1.NewBus(
		w1.OptBaseDir(root.BaseDir),
		w1.OptLoadKernelModules(root.LoadKernelModules),
		w1.OptSensorOptions(options...),
		w1.OptLogger(root.logger),
	)
	if err != nil {
		return nil, err
	}

	if len(c.SensorIDs) == 0 {
		opened, err := bus.OpenAll(types...)
		if err != nil {
			return nil, err
		}
		sensors := make([]w1therm.ThermoSensor, 0, len(opened))
		for _, s := range opened {
			sensors = append(sensors, s)
		}
		return sensors, nil
	}

	var sensors []w1therm.ThermoSensor
	for _, id := range c.SensorIDs {
		s, err := bus.Open(id, 0)
		if err != nil {
			closeSensors(sensors)
			return nil, err
		}
		sensors = append(sensors, s)
	}
	return sensors, nil
}

func closeSensors(sensors []w1therm.ThermoSensor) {
	for _, s := range sensors {
		_ = s.Close()
	}
}
