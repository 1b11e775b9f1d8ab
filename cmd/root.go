package main

import (
	"errors"

	"github.com/malkhamis/w1therm"
	"github.com/malkhamis/w1therm/w1"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoCommand = errors.New("no command given")

// globalFlags are shared by all subcommands
type globalFlags struct {
	baseDir           string
	loadKernelModules bool
}

func (gf *globalFlags) newBus(logger *zap.Logger) (*w1.Bus, error) {
	return w1.NewBus(
		w1.OptBaseDir(gf.baseDir),
		w1.OptLoadKernelModules(gf.loadKernelModules),
		w1.OptLogger(logger),
	)
}

func newRootCmd(logger *zap.Logger) *cobra.Command {

	gf := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "w1thermsensor",
		Short: "w1thermsensor - read 1-Wire temperature sensors",
		Long: `w1thermsensor reads temperatures from 1-Wire digital thermometers exposed by
the w1_therm kernel driver under sysfs.

Use subcommands to perform different operations:
  - ls: list available sensors
  - all: read the temperature of all available sensors
  - get: read the temperature of a single sensor
  - resolution: set the conversion resolution of a sensor
  - monitor: continuously read sensors as described by a json config file`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fail(exitUsage, "invalid arguments", errNoCommand)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fail(exitUsage, "invalid flags", err)
	})

	rootCmd.PersistentFlags().StringVar(
		&gf.baseDir, "base-dir", w1.DefaultBaseDir, "Directory under which 1-Wire devices are exposed",
	)
	rootCmd.PersistentFlags().BoolVar(
		&gf.loadKernelModules, "load-kernel-modules", false, "Load the w1-gpio and w1-therm kernel modules",
	)

	rootCmd.AddCommand(newLsCmd(gf, logger))
	rootCmd.AddCommand(newAllCmd(gf, logger))
	rootCmd.AddCommand(newGetCmd(gf, logger))
	rootCmd.AddCommand(newResolutionCmd(gf, logger))
	rootCmd.AddCommand(newMonitorCmd(gf, logger))

	return rootCmd
}

func parseSensorTypes(names []string) ([]w1therm.SensorType, error) {
	var types []w1therm.SensorType
	for _, name := range names {
		st, err := w1therm.ParseSensorType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, nil
}

// parseSensorType parses an optional sensor type, where an empty name means any type
func parseSensorType(name string) (w1therm.SensorType, error) {
	if name == "" {
		return 0, nil
	}
	return w1therm.ParseSensorType(name)
}
