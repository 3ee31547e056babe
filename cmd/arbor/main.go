package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
	logFile    string
	verbose    bool
	seed       int64
	trees      int
	columns    int
	theme      string
	preset     string
	watcher    string
	stateFile  string
	redisAddr  string
	journal    bool

	// set by the root command's PersistentPreRunE
	cfg     *config.Config
	logSink io.Closer
)

// main registers the commands, runs the TUI when no subcommand is given and
// exits with status 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "arbor",
		Short:             "grow fractal trees by picking the one you like",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logSink != nil {
				logSink.Close()
			}
		},
		RunE: runTUI,
	}

	bindGlobalFlags(rootCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal scene",
		RunE:  runTUI,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "scene in a raylib window",
		RunE:  runGUI,
	}

	rootCmd.AddCommand(tuiCmd, guiCmd, newGrowCmd(), newRenderCmd(), newDecodeCmd(), newEncodeCmd(),
		newServeCmd(), newListCmd(), newPlotCmd(), newExportCSVCmd(), newExportJSONCmd(), newPresetsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bindGlobalFlags registers the flags every command shares.
func bindGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml or toml)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "journal directory")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	pf.IntVar(&trees, "trees", config.DefaultTrees, "number of trees")
	pf.IntVar(&columns, "columns", config.DefaultColumns, "trees per row")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "colour theme")
	pf.StringVar(&preset, "preset", "", "attribute preset")
	pf.StringVar(&watcher, "watcher", config.DefaultWatcher, "state watcher: memory, file or redis")
	pf.StringVar(&stateFile, "state-file", "", "state file for the file watcher")
	pf.StringVar(&redisAddr, "redis", "", "redis address for the redis watcher")
	pf.BoolVar(&journal, "journal", false, "journal every transition to the data directory")
}

// setup builds the logger and the effective config. Flags override the
// config file only when they were set explicitly.
func setup(cmd *cobra.Command, args []string) error {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w, logSink = f, f
	case interactive(cmd):
		// the terminal belongs to the TUI
		w = io.Discard
	}
	logger := newLogger(w, level)
	log.SetDefault(logger)
	cmd.SetContext(withLogger(cmd.Context(), logger))

	var err error
	cfg, err = loadConfig(cmd)
	return err
}

func interactive(cmd *cobra.Command) bool {
	return cmd == cmd.Root() || cmd.Name() == "tui"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		c.DataDir = dataDir
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("trees") {
		c.Trees = trees
	}
	if flags.Changed("columns") {
		c.Columns = columns
	}
	if flags.Changed("theme") {
		c.Theme = theme
	}
	if flags.Changed("preset") {
		c.Preset = preset
	}
	if flags.Changed("watcher") {
		c.Watcher = watcher
	}
	if flags.Changed("state-file") {
		c.StateFile = stateFile
		if !flags.Changed("watcher") {
			c.Watcher = "file"
		}
	}
	if flags.Changed("redis") {
		c.Redis.Addr = redisAddr
		if !flags.Changed("watcher") {
			c.Watcher = "redis"
		}
	}
	if flags.Changed("journal") {
		c.Journal = journal
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
