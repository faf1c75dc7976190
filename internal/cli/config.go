package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treediff/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the treediff configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Default(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}
