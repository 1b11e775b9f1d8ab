package main

import (
	"errors"
	"log"
	"os"

	"github.com/malkhamis/w1therm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// osExit is internally used to ease unit-testing of the main function
var osExit = os.Exit

// exit codes as defined in sysexits.h
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 64
	exitNoInput     = 66
	exitUnavailable = 69
	exitConfig      = 78
)

func main() {
	code := execute()
	osExit(code)
}

func execute() (exitCode int) {

	logger := newLogger()
	defer logger.Sync()

	args := []string{}
	if len(os.Args) > 1 {
		args = os.Args[1:]
	}

	rootCmd := newRootCmd(logger)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var cerr *cmdError
	if !errors.As(err, &cerr) {
		logger.Error("invalid arguments", zap.Error(err))
		return exitUsage
	}
	if cerr.err != nil {
		logger.Error(cerr.msg, zap.Error(cerr.err))
	}
	return cerr.code
}

// cmdError carries the exit code and log message of a failed command
type cmdError struct {
	code int
	msg  string
	err  error
}

func (ce *cmdError) Error() string {
	if ce.err == nil {
		return ce.msg
	}
	return ce.msg + ": " + ce.err.Error()
}

func (ce *cmdError) Unwrap() error {
	return ce.err
}

func fail(code int, msg string, err error) error {
	return &cmdError{code: code, msg: msg, err: err}
}

// failSensor picks the exit code according to the kind of sensor error
func failSensor(msg string, err error) error {
	var (
		noSensor    *w1therm.NoSensorFoundError
		kernel      *w1therm.KernelModuleLoadError
		unsupUnit   *w1therm.UnsupportedUnitError
		unsupSensor *w1therm.UnsupportedSensorError
	)
	switch {
	case errors.As(err, &noSensor):
		return fail(exitNoInput, msg, err)
	case errors.As(err, &kernel):
		return fail(exitUnavailable, msg, err)
	case errors.As(err, &unsupUnit), errors.As(err, &unsupSensor):
		return fail(exitUsage, msg, err)
	default:
		return fail(exitFailure, msg, err)
	}
}

// usageArgs wraps an argument validator so its errors map to exitUsage
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fail(exitUsage, "invalid arguments", err)
		}
		return nil
	}
}

// newLogger is internally used to ease unit testing
var newLogger = func() *zap.Logger {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.OutputPaths = []string{"stdout"}
	logger := getLoggerAndPrintErrIfAny(loggerConfig.Build())
	return logger
}

// getLoggerAndPrintErrIfAny is internally used to ease unit testing
func getLoggerAndPrintErrIfAny(logger *zap.Logger, err error) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err != nil {
		log.Printf("error creating logger: %v\n", err)
	}
	return logger
}
