package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/campusclinic/internal/config"
)

func (a *app) configPath() string {
	if a.cfgPath != "" {
		return a.cfgPath
	}
	return config.DefaultPath()
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the client configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printer.Emit(a.cfg, func() (string, error) {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return "", fmt.Errorf("failed to marshal config: %w", err)
				}
				return fmt.Sprintf("# %s\n%s", a.configPath(), data), nil
			})
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:     "init",
		Short:   "Write the effective configuration, flags included, to the config file",
		Example: `  clinic --api-url https://clinic.example.edu config init`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return userError(fmt.Sprintf("%s already exists. Pass --force to overwrite it.", path))
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			a.printer.Line("Wrote %s.", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
