package main

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/malkhamis/w1therm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errMonitorsExited = errors.New("all monitors exited")

func newMonitorCmd(gf *globalFlags, logger *zap.Logger) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "monitor CONFIG",
		Short: "Continuously read sensors as described by a json config file",
		Long: `Continuously read sensors as described by the given json config file and log
every reading. Example config:

  {
    "base_dir": "/sys/bus/w1/devices",
    "load_kernel_modules": true,
    "monitors": [
      {
        "name": "boiler",
        "unit": "celsius",
        "poll_period": "5s",
        "sensor_types": ["DS18B20"],
        "retries": 10,
        "retry_delay": "100ms",
        "allow_reset_value": false
      }
    ]
  }

The global --base-dir and --load-kernel-modules flags are used unless the config
file sets them.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitors(gf, logger, args[0])
		},
	}

	return cmd
}

func runMonitors(gf *globalFlags, logger *zap.Logger, filename string) error {

	file, err := os.Open(filename)
	if err != nil {
		return fail(exitNoInput, "opening the given file", err)
	}
	defer file.Close()

	cfg, err := newConfig(file, logger)
	if err != nil {
		return fail(exitConfig, "creating monitor config", err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = gf.baseDir
	}
	cfg.LoadKernelModules = cfg.LoadKernelModules || gf.loadKernelModules

	monitors, err := cfg.newMonitors()
	if err != nil {
		return fail(exitConfig, "instantiating monitors", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	var (
		interrupted bool
		mutex       sync.Mutex
	)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, stopping monitors", zap.Stringer("signal", sig))
			mutex.Lock()
			interrupted = true
			mutex.Unlock()
			for _, m := range monitors {
				_ = m.Stop()
			}
		case <-done:
		}
	}()

	var wg sync.WaitGroup
	for _, m := range monitors {
		m := m
		wg.Add(1)
		go func() {
			err := m.Start()
			if !errors.Is(err, w1therm.ErrMonitorStopped) {
				logger.Error("monitor returned an error", zap.Error(err), zap.String("monitor_name", m.Name()))
			}
			wg.Done()
		}()
	}
	wg.Wait()
	close(done)

	mutex.Lock()
	defer mutex.Unlock()
	if interrupted {
		return nil
	}
	return fail(exitFailure, "monitoring stopped", errMonitorsExited)
}
