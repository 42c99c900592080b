package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpad/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect palette settings files",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List settings files in the settings directory",
		Args:  cobra.NoArgs,
		RunE:  runSettingsList,
	}
	listCmd.Flags().String("settings-dir", "", "directory holding settings JSON files (default from config)")
	cmd.AddCommand(listCmd)

	return cmd
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	files, err := settings.List(cfg.SettingsDir)
	if err != nil {
		return err
	}
	for _, name := range files {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
			return err
		}
	}
	return nil
}
