// CSI Monitor - live terminal plot of Wi-Fi CSI amplitude
// This program reads CSI frames printed by an ESP32 over a serial link and
// plots the amplitude of one subcarrier over a sliding window of packets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"csi-monitor/internal/config"
	"csi-monitor/internal/logging"
	"csi-monitor/internal/monitor"
	"csi-monitor/internal/serialport"
	"csi-monitor/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile     string // Configuration file path
	verbose     bool   // Enable debug logging
	listPorts   bool   // Print serial ports and exit
	readTimeout string // Serial poll timeout (e.g., "100ms")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "csi-monitor",
	Short: "Live terminal plot of Wi-Fi CSI subcarrier amplitude",
	Long: `CSI Monitor reads channel state information frames from an ESP32 over a
serial link and plots the amplitude of one subcarrier in the terminal.

Press q or Esc to stop.`,
	Version:      version.GetVersion(),
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if listPorts {
			if err := printPorts(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := runMonitor(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetVersionTemplate(version.GetVersionInfo("csi-monitor") + "\n")

	def := config.DefaultConfig()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Serial link
	rootCmd.Flags().StringP("port", "p", def.Serial.Port, "serial device")
	rootCmd.Flags().IntP("baud", "b", def.Serial.BaudRate, "baud rate")
	rootCmd.Flags().StringVar(&readTimeout, "timeout", def.Serial.ReadTimeout.String(), "serial read timeout")
	rootCmd.Flags().Bool("reset-input", def.Serial.ResetInput, "discard bytes buffered before opening (true|false)")
	rootCmd.Flags().BoolVar(&listPorts, "list-ports", false, "list available serial ports and exit")

	// Plot
	rootCmd.Flags().IntP("subcarrier", "s", def.CSI.SubcarrierIndex, "subcarrier index to plot")
	rootCmd.Flags().IntP("history", "n", def.Plot.HistoryLength, "number of packets shown")
	rootCmd.Flags().Float64("amp-min", def.Plot.AmplitudeMin, "bottom of the amplitude axis")
	rootCmd.Flags().Float64("amp-max", def.Plot.AmplitudeMax, "top of the amplitude axis")

	// Logging
	rootCmd.Flags().String("log-level", def.Logging.Level, "log level (debug, info, warn, error)")
	rootCmd.Flags().String("log-file", def.Logging.File, `log file, "-" for stderr, empty to disable`)

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("serial.port", rootCmd.Flags().Lookup("port"))
	viper.BindPFlag("serial.baud_rate", rootCmd.Flags().Lookup("baud"))
	viper.BindPFlag("serial.read_timeout", rootCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("serial.reset_input", rootCmd.Flags().Lookup("reset-input"))
	viper.BindPFlag("csi.subcarrier_index", rootCmd.Flags().Lookup("subcarrier"))
	viper.BindPFlag("plot.history_length", rootCmd.Flags().Lookup("history"))
	viper.BindPFlag("plot.amplitude_min", rootCmd.Flags().Lookup("amp-min"))
	viper.BindPFlag("plot.amplitude_max", rootCmd.Flags().Lookup("amp-max"))
	viper.BindPFlag("logging.level", rootCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("logging.file", rootCmd.Flags().Lookup("log-file"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// CSI_MONITOR_SERIAL_PORT overrides serial.port
	viper.SetEnvPrefix("CSI_MONITOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers config file and flags over the defaults
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	timeout, err := time.ParseDuration(viper.GetString("serial.read_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout format: %w", err)
	}
	cfg.Serial.ReadTimeout = timeout

	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func printPorts() error {
	ports, err := serialport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

// runMonitor is the main application logic
func runMonitor() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	m := monitor.NewMonitor(cfg, logger)
	if err := m.Initialize(); err != nil {
		m.Close()
		return fmt.Errorf("failed to initialize monitor: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("monitoring failed: %w", err)
	}

	stats := m.Stats()
	fmt.Printf("Plotted %d samples from %d lines (%d dropped).\n", stats.Samples, stats.Lines, stats.Dropped())
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
