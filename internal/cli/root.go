// Package cli provides the command-line interface for PixelPad.
package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pixelpad/internal/config"
	"github.com/jmylchreest/pixelpad/internal/version"
)

// NewRootCmd builds the pixelpad command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pixelpad",
		Short: "Colour extraction preview service",
		Long: `PixelPad simulates a colour extraction backend.

It creates colour sessions from uploaded images and renders PNG previews
of the detected palette, either over HTTP or directly from the command line.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newSettingsCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

// loadConfig resolves the effective configuration for cmd: defaults, then
// the --config file, then PIXELPAD_* variables, then flags set explicitly
// on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	overrides := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
	cfg.BindFlags(overrides)
	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if overrides.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		if err := overrides.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("invalid --%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return nil, setErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. --verbose forces debug output and
// --quiet restricts it to errors; otherwise level comes from the config.
func newLogger(cmd *cobra.Command, level string, out io.Writer) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	lvl := hclog.LevelFromString(level)
	switch {
	case verbose:
		lvl = hclog.Debug
	case quiet:
		lvl = hclog.Error
	case lvl == hclog.NoLevel:
		lvl = hclog.Info
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "pixelpad",
		Output: out,
		Level:  lvl,
	})
}
