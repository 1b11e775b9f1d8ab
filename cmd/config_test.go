package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/malkhamis/w1therm"

	"go.uber.org/zap"
)

func Test_config_newMonitors(t *testing.T) {

	baseDir, cleanup := fakeBus(t, map[string]string{
		"28-00000588806a": slaveContent("21000"),
		"28-0000058b3c4d": slaveContent("22000"),
		"10-000801b5a7a4": slaveContent("23000"),
	})
	defer cleanup()

	jsonData := strings.NewReader(fmt.Sprintf(`
		    {
		      "base_dir": %q,
		      "monitors": [

		        {
		          "name": "monitor/1",
		          "unit": "kelvin",
		          "poll_period": "3s",
		          "sensor_types": ["DS18B20"]
		        },

		        {
		          "name": "monitor/2",
		          "poll_period": "7s",
		          "sensor_ids": ["000801b5a7a4"],
		          "retries": 2,
		          "retry_delay": "5ms",
		          "allow_reset_value": true
		        }

		      ]
		    }
		  `,
		baseDir,
	))

	cfg, err := newConfig(jsonData, nil)
	if err != nil {
		t.Fatal(err)
	}
	actual, err := cfg.newMonitors()
	if err != nil {
		t.Fatalf("expected no error building monitors from json config, got: %v", err)
	}
	defer func() {
		for _, m := range actual {
			_ = m.Stop()
		}
	}()

	if len(actual) != 2 {
		t.Fatalf("expected 2 monitors, got: %d", len(actual))
	}
	if actual[0].Name() != "monitor/1" || actual[1].Name() != "monitor/2" {
		t.Errorf("unexpected monitor names: %q, %q", actual[0].Name(), actual[1].Name())
	}

	readings, err := actual[0].Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected monitor/1 to read 2 sensors, got: %d", len(readings))
	}
	if readings[0].SensorID != "28-00000588806a" || readings[0].Unit != w1therm.Kelvin {
		t.Errorf("unexpected reading: %+v", readings[0])
	}

	readings, err = actual[1].Poll()
	if err != nil {
		t.Fatal(err)
	}
	if len(readings) != 1 || readings[0].SensorID != "10-000801b5a7a4" || readings[0].Value != 23 {
		t.Errorf("unexpected readings of monitor/2: %+v", readings)
	}
}

func Test_newConfig_errNilReader(t *testing.T) {
	t.Parallel()

	_, err := newConfig(nil, nil)
	if !errors.Is(err, errNoJsonConfig) {
		t.Fatalf("unexpected error\nwant: %v\n got: %v", errNoJsonConfig, err)
	}
}

func Test_newConfig_setsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := newConfig(strings.NewReader(`{"monitors":[{}]}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	expected, actual := "celsius", cfg.Monitors[0].Unit
	if actual != expected {
		t.Fatalf("expected unit to be set to '%s' if not given, got: '%s'", expected, actual)
	}
}

func Test_newConfig_errBadJson(t *testing.T) {
	t.Parallel()

	_, err := newConfig(strings.NewReader(`{ bad json`), nil)
	var expected *json.SyntaxError
	if ok := errors.As(err, &expected); !ok {
		t.Fatalf("unexpected error type\nwant: %T\n got: %T", expected, err)
	}
}

func Test_newConfig_errNoMonitorConfig(t *testing.T) {
	t.Parallel()

	_, err := newConfig(strings.NewReader(`{"monitors":[]}`), nil)
	if !errors.Is(err, errNoMonitorConfig) {
		t.Fatalf("unexpected error\nwant: %v\n got: %v", errNoMonitorConfig, err)
	}
}

func Test_config_newMonitors_errors(t *testing.T) {
	t.Parallel()

	baseDir, cleanup := fakeBus(t, map[string]string{
		"28-00000588806a": slaveContent("21000"),
	})
	defer cleanup()

	cases := map[string]struct {
		monitor *configMonitor
		outErr  error
	}{
		"bad-poll-period": {
			monitor: &configMonitor{PollPeriod: "fast", Unit: "c"},
			outErr:  errBadDuration,
		},
		"bad-retry-delay": {
			monitor: &configMonitor{RetryDelay: "soon", Unit: "c"},
			outErr:  errBadDuration,
		},
		"bad-unit": {
			monitor: &configMonitor{Unit: "rankine"},
			outErr:  w1therm.ErrW1Therm,
		},
		"bad-sensor-type": {
			monitor: &configMonitor{Unit: "c", SensorTypes: []string{"DS1234"}},
			outErr:  w1therm.ErrW1Therm,
		},
		"ids-and-types": {
			monitor: &configMonitor{Unit: "c", SensorIDs: []string{"a"}, SensorTypes: []string{"DS18B20"}},
			outErr:  errSensorIDsAndTypes,
		},
		"unknown-sensor-id": {
			monitor: &configMonitor{Unit: "c", SensorIDs: []string{"ffffffffffff"}},
			outErr:  w1therm.ErrW1Therm,
		},
	}

	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			cfg := &config{
				BaseDir:  baseDir,
				Monitors: []*configMonitor{testCase.monitor},
				logger:   zap.NewNop(),
			}
			_, err := cfg.newMonitors()
			if !errors.Is(err, testCase.outErr) {
				t.Fatalf("unexpected error\nwant: %v\n got: %v", testCase.outErr, err)
			}
		})
	}

	// the unknown id error must be the one that hints at wiring
	cfg := &config{
		BaseDir:  baseDir,
		Monitors: []*configMonitor{{Unit: "c", SensorIDs: []string{"ffffffffffff"}}},
		logger:   zap.NewNop(),
	}
	_, err := cfg.newMonitors()
	var noSensor *w1therm.NoSensorFoundError
	if !errors.As(err, &noSensor) {
		t.Fatalf("unexpected error type\nwant: %T\n got: %T", noSensor, err)
	}
}

func Test_configMonitor_sensorOptions(t *testing.T) {
	t.Parallel()

	retries := 4
	c := &configMonitor{RetryDelay: "250ms", Retries: &retries}
	options, err := c.sensorOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(options) != 3 {
		t.Fatalf("expected 3 sensor options, got: %d", len(options))
	}

	c = &configMonitor{}
	options, err = c.sensorOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(options) != 2 {
		t.Fatalf("expected 2 sensor options if retries are not given, got: %d", len(options))
	}
}
