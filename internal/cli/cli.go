// Package cli implements the poddiff command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poddiff/pkg/buildinfo"
	"github.com/matzehuels/poddiff/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "poddiff"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	// Stdout receives reports; status lines and logs go to stderr.
	Stdout io.Writer

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		Stdout: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "poddiff compares two versions of a CocoaPods pod",
		Long: `poddiff shows what changed between two versions of a CocoaPods pod: which
subspecs (and optionally dependencies) exist on each platform and the minimum
platform version each one requires. It can also write Podfiles that install
exactly those components.`,
		Version:           buildinfo.Resolve(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/poddiff/config.toml)")

	root.AddCommand(c.diffCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and installs the logging hooks.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config directory", "error", err)
			return nil
		}
		path = p
	}
	cfg, unknown, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", path)
	}
	c.Config = cfg

	if c.verbose {
		installHooks(c.Logger)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// installHooks routes engine, cache and HTTP events to the debug log.
func installHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetDiffHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
