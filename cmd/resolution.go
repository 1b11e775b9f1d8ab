package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/malkhamis/w1therm/w1"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newResolutionCmd(gf *globalFlags, logger *zap.Logger) *cobra.Command {
	var (
		typeName string
		persist  bool
	)

	cmd := &cobra.Command{
		Use:   "resolution BITS [ID]",
		Short: "Set the conversion resolution of a sensor",
		Long: `Set the conversion resolution of the sensor with the given id to BITS, which
must be between 9 and 12. If no id is given, the first available sensor is used.
Writing to sensors usually requires root privileges.`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, err := strconv.Atoi(args[0])
			if err != nil {
				return fail(exitUsage, "invalid resolution", err)
			}
			var id string
			if len(args) > 1 {
				id = args[1]
			}
			st, err := parseSensorType(typeName)
			if err != nil {
				return fail(exitUsage, "invalid sensor type", err)
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

			err = sensor.SetResolution(bits, persist)
			if errors.Is(err, w1.ErrInvalidResolution) {
				return fail(exitUsage, "invalid resolution", err)
			}
			if err != nil {
				return failSensor(fmt.Sprintf("setting resolution of sensor '%s'", sensor.ID()), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully set resolution to %d bits on sensor %s\n", bits, sensor.ID())
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Type of the sensor")
	cmd.Flags().BoolVar(&persist, "persist", false, "Write the resolution to the sensor's EEPROM")

	return cmd
}
