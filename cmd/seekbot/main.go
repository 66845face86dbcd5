package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/san-kum/seekbot/internal/config"
	"github.com/san-kum/seekbot/internal/servo"
	"github.com/san-kum/seekbot/internal/storage"
	"github.com/san-kum/seekbot/internal/viz"
	"github.com/san-kum/seekbot/internal/vocab"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	tickHz     float64
	// Controller overrides
	lossPolicy    string
	feedbackStyle string
	depthTarget   float64
	// serve
	serialPort   string
	baudRate     int
	listenAddr   string
	noSerial     bool
	cancelOnLost bool
	// sim
	live     bool
	maxTicks int
	seed     int64
	dropout  float64
	targetX  float64
	targetY  float64
	// plot / export
	series    string
	outPath   string
	writePath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "seekbot",
		Short:        "visual servoing controller that drives a robot up to a named object",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config, .seekbot)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every tick and log to stderr")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "accept goals on stdin and drive the robot from live sensor streams",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addControllerFlags(serveCmd)
	serveCmd.Flags().StringVar(&serialPort, "port", "", "motor controller serial port")
	serveCmd.Flags().IntVar(&baudRate, "baud", 0, "serial baud rate")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "sensor stream listen address")
	serveCmd.Flags().BoolVar(&noSerial, "no-serial", false, "do not open the serial port; commands only go to stream peers")
	serveCmd.Flags().BoolVar(&cancelOnLost, "cancel-on-lost", false, "cancel the goal when the target is reported lost")

	simCmd := &cobra.Command{
		Use:   "sim [class]",
		Short: "run a goal against the simulated scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSim,
	}
	addControllerFlags(simCmd)
	simCmd.Flags().BoolVar(&live, "live", false, "show the live monitor")
	simCmd.Flags().IntVar(&maxTicks, "ticks", 400, "cancel the goal after this many ticks")
	simCmd.Flags().Int64Var(&seed, "seed", 1, "random seed for dropout and depth noise")
	simCmd.Flags().Float64Var(&dropout, "dropout", 0, "probability that a frame misses the target")
	simCmd.Flags().Float64Var(&targetX, "target-x", 0, "target x position (m)")
	simCmd.Flags().Float64Var(&targetY, "target-y", 0, "target y position (m)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded goal runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "", "only plot this series (depth, bbox_x, linear_x, angular_z)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	classesCmd := &cobra.Command{
		Use:   "classes",
		Short: "list the object classes a goal can name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLASS")
			for id, name := range vocab.COCO().Names() {
				fmt.Fprintf(w, "%d\t%s\n", id, name)
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, viz.Subtle.Render(config.Presets[name].Description))
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}
	configCmd.Flags().StringVarP(&writePath, "write", "w", "", "write the configuration to this file instead")
	addControllerFlags(configCmd)

	rootCmd.AddCommand(serveCmd, simCmd, listCmd, plotCmd, exportCmd, classesCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addControllerFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tickHz, "hz", 0, "control loop rate")
	cmd.Flags().StringVar(&lossPolicy, "loss-policy", "", "abort or report when the target is lost")
	cmd.Flags().StringVar(&feedbackStyle, "feedback", "", "feedback style: state, compass3 or compass8")
	cmd.Flags().Float64Var(&depthTarget, "stop-at", 0, "stopping distance from the target (m)")
}

// loadConfig resolves preset, then config file, then changed flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("hz") {
		cfg.TickHz = tickHz
	}
	if flags.Changed("loss-policy") {
		p, err := servo.ParseLossPolicy(lossPolicy)
		if err != nil {
			return nil, err
		}
		cfg.Controller.LossPolicy = p
	}
	if flags.Changed("feedback") {
		s, err := servo.ParseFeedbackStyle(feedbackStyle)
		if err != nil {
			return nil, err
		}
		cfg.Controller.FeedbackStyle = s
	}
	if flags.Changed("stop-at") {
		cfg.Controller.DepthTarget = depthTarget
	}
	if flags.Changed("port") {
		cfg.Serial.Port = serialPort
	}
	if flags.Changed("baud") {
		cfg.Serial.BaudRate = baudRate
	}
	if flags.Changed("listen") {
		cfg.Ingest.Addr = listenAddr
	}
	if flags.Changed("seed") {
		cfg.Scene.Seed = seed
	}
	if flags.Changed("dropout") {
		cfg.Scene.Dropout = dropout
	}
	if flags.Changed("target-x") {
		cfg.Scene.TargetX = targetX
	}
	if flags.Changed("target-y") {
		cfg.Scene.TargetY = targetY
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "seekbot: ", log.LstdFlags|log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if writePath != "" {
		if err := config.Save(writePath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePath)
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

// openStore resolves the data directory without requiring a valid config.
func openStore() *storage.Store {
	dir := dataDir
	if dir == "" {
		dir = config.DefaultDataDir
		if configFile != "" {
			if cfg, err := config.Load(configFile); err == nil && cfg.DataDir != "" {
				dir = cfg.DataDir
			}
		}
	}
	return storage.New(dir)
}
