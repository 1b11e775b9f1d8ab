package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/malkhamis/w1therm"
	"github.com/malkhamis/w1therm/w1"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type jsonSensor struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Temperature *float64 `json:"temperature,omitempty"`
	Unit        string   `json:"unit,omitempty"`
}

func newLsCmd(gf *globalFlags, logger *zap.Logger) *cobra.Command {
	var (
		typeNames []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List available sensors",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseSensorTypes(typeNames)
			if err != nil {
				return fail(exitUsage, "invalid sensor type", err)
			}
			bus, err := gf.newBus(logger)
			if err != nil {
				return failSensor("loading kernel modules", err)
			}
			ids, err := bus.Available(types...)
			if err != nil {
				return failSensor("listing sensors", err)
			}
			return writeSensorList(cmd.OutOrStdout(), ids, asJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&typeNames, "type", "t", nil, "Only list sensors of the given type(s)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as json")

	return cmd
}

func newAllCmd(gf *globalFlags, logger *zap.Logger) *cobra.Command {
	var (
		typeNames  []string
		unitName   string
		resolution int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Read the temperature of all available sensors",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := parseSensorTypes(typeNames)
			if err != nil {
				return fail(exitUsage, "invalid sensor type", err)
			}
			unit, err := w1therm.ParseUnit(unitName)
			if err != nil {
				return fail(exitUsage, "invalid unit", err)
			}
			bus, err := gf.newBus(logger)
			if err != nil {
				return failSensor("loading kernel modules", err)
			}
			sensors, err := bus.OpenAll(types...)
			if err != nil {
				return failSensor("opening sensors", err)
			}
			defer func() {
				for _, s := range sensors {
					_ = s.Close()
				}
			}()

			var results []jsonSensor
			for _, s := range sensors {
				result, err := readSensor(s, unit, resolution)
				if err != nil {
					return failSensor(fmt.Sprintf("reading sensor '%s'", s.ID()), err)
				}
				results = append(results, result)
			}
			return writeTemperatures(cmd.OutOrStdout(), results, asJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&typeNames, "type", "t", nil, "Only read sensors of the given type(s)")
	cmd.Flags().StringVarP(&unitName, "unit", "u", "celsius", "Temperature unit: celsius, fahrenheit or kelvin")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 0, "Set the resolution (9-12 bits) before reading")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as json")

	return cmd
}

func newGetCmd(gf *globalFlags, logger *zap.Logger) *cobra.Command {
	var (
		typeName   string
		unitName   string
		resolution int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "get [ID]",
		Short: "Read the temperature of a single sensor",
		Long: `Read the temperature of the sensor with the given id. The id may be given
with or without its family prefix. If no id is given, the first available sensor
is read.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}
			st, err := parseSensorType(typeName)
			if err != nil {
				return fail(exitUsage, "invalid sensor type", err)
			}
			unit, err := w1therm.ParseUnit(unitName)
			if err != nil {
				return fail(exitUsage, "invalid unit", err)
			}
			bus, err := gf.newBus(logger)
			if err != nil {
				return failSensor("loading kernel modules", err)
			}
			sensor, err := bus.Open(id, st)
			if err != nil {
				return failSensor("opening sensor", err)
			}
			defer sensor.Close()

			result, err := readSensor(sensor, unit, resolution)
			if err != nil {
				return failSensor(fmt.Sprintf("reading sensor '%s'", sensor.ID()), err)
			}
			return writeTemperature(cmd.OutOrStdout(), result, asJSON)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Type of the sensor")
	cmd.Flags().StringVarP(&unitName, "unit", "u", "celsius", "Temperature unit: celsius, fahrenheit or kelvin")
	cmd.Flags().IntVarP(&resolution, "resolution", "r", 0, "Set the resolution (9-12 bits) before reading")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as json")

	return cmd
}

func readSensor(s *w1.Sensor, unit w1therm.Unit, resolution int) (jsonSensor, error) {
	if resolution != 0 {
		if err := s.SetResolution(resolution, false); err != nil {
			return jsonSensor{}, err
		}
	}
	temp, err := s.Temperature(unit)
	if err != nil {
		return jsonSensor{}, err
	}
	return jsonSensor{
		ID:          s.ID(),
		Type:        s.Type().String(),
		Temperature: &temp,
		Unit:        unit.String(),
	}, nil
}

func writeSensorList(w io.Writer, ids []string, asJSON bool) error {
	sensors := make([]jsonSensor, 0, len(ids))
	for _, id := range ids {
		var typeName string
		if st, ok := w1.SensorTypeOf(id); ok {
			typeName = st.String()
		}
		sensors = append(sensors, jsonSensor{ID: id, Type: typeName})
	}

	if asJSON {
		return writeJSON(w, map[string]interface{}{"sensors": sensors})
	}

	fmt.Fprintf(w, "Found %d sensors:\n", len(sensors))
	for i, s := range sensors {
		fmt.Fprintf(w, "  %d. ID: %s Type: %s\n", i+1, s.ID, s.Type)
	}
	return nil
}

func writeTemperatures(w io.Writer, results []jsonSensor, asJSON bool) error {
	if asJSON {
		return writeJSON(w, map[string]interface{}{"sensors": results})
	}

	fmt.Fprintf(w, "Got temperatures of %d sensors:\n", len(results))
	for i, r := range results {
		fmt.Fprintf(
			w, "  Sensor %d (%s) measured temperature: %.2f %s\n",
			i+1, r.ID, *r.Temperature, r.Unit,
		)
	}
	return nil
}

func writeTemperature(w io.Writer, result jsonSensor, asJSON bool) error {
	if asJSON {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "Sensor %s measured temperature: %.2f %s\n", result.ID, *result.Temperature, result.Unit)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fail(exitFailure, "encoding json output", err)
	}
	return nil
}
