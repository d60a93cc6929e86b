// Package cli implements the serialterm command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"serialterm/internal/bus"
	"serialterm/internal/config"
	"serialterm/internal/engine"
	"serialterm/internal/logging"
	"serialterm/internal/monitor"
	"serialterm/internal/session"
)

var (
	cfgFile     string
	flagPort    string
	flagBaud    int
	flagParity  string
	flagStop    string
	flagCapture bool
)

var rootCmd = &cobra.Command{
	Use:   "serialterm",
	Short: "A serial port terminal",
	Long: `serialterm is a terminal for talking to serial devices.

It opens a serial port, shows incoming traffic in ASCII or hex with
optional timestamps and inter-frame timing, and sends what you type.
Sessions can be captured to a rotated file and mirrored to websocket
clients for remote monitoring.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./serialterm.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagPort, "port", "p", "", "serial port name (e.g. /dev/ttyUSB0)")
	rootCmd.PersistentFlags().IntVarP(&flagBaud, "baud", "b", 0, "baud rate")
	rootCmd.PersistentFlags().StringVar(&flagParity, "parity", "", "parity: none, even, odd, mark, space")
	rootCmd.PersistentFlags().StringVar(&flagStop, "stop-bits", "", "stop bits: 1, 1.5, 2")
	rootCmd.PersistentFlags().BoolVar(&flagCapture, "capture", false, "capture the session to a file")
}

// app bundles the wired runtime components behind a command
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	bus      *bus.Bus
	engine   *engine.Engine
	recorder *session.Recorder
	monitor  *monitor.Server
}

// newApp loads configuration, applies flag overrides and wires the
// engine with its attached consumers.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flagPort != "" {
		cfg.Serial.Port = flagPort
	}
	if flagBaud > 0 {
		cfg.Serial.BaudRate = flagBaud
	}
	if flagParity != "" {
		cfg.Serial.Parity = flagParity
	}
	if flagStop != "" {
		cfg.Serial.StopBits = flagStop
	}
	if flagCapture {
		cfg.Capture.Enabled = true
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	b := bus.New(logger)
	eng := engine.New(b, logger,
		engine.WithPollInterval(cfg.Serial.ReadTimeout),
	)

	a := &app{
		cfg:    cfg,
		logger: logger,
		bus:    b,
		engine: eng,
	}

	if cfg.Capture.Enabled {
		a.recorder = session.NewFileRecorder(session.FileConfig{
			Path:       cfg.Capture.Path,
			MaxSizeMB:  cfg.Capture.MaxSize,
			MaxBackups: cfg.Capture.MaxBackups,
			MaxAgeDays: cfg.Capture.MaxAge,
			Compress:   cfg.Capture.Compress,
		}, logger)
		a.recorder.Attach(b)
		logger.Info("Session capture enabled", zap.String("path", cfg.Capture.Path))
	}

	if cfg.Monitor.Enabled {
		a.monitor = monitor.NewServer(logger, a.status)
		a.monitor.Attach(b)
		go func() {
			if err := a.monitor.ListenAndServe(cfg.Monitor.Addr); err != nil {
				logger.Error("Monitor server failed", zap.Error(err))
			}
		}()
	}

	return a, nil
}

// status is the snapshot pushed to monitor clients on connect
func (a *app) status() map[string]any {
	stats := a.engine.Stats()
	return map[string]any{
		"state":          a.engine.State().String(),
		"port":           a.engine.Parameters().Port,
		"bytes_received": stats.BytesReceived,
		"bytes_sent":     stats.BytesSent,
	}
}

// close tears the application down in dependency order
func (a *app) close() {
	a.engine.Disconnect()
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.recorder != nil {
		a.recorder.Close()
	}
	a.logger.Sync()
}
