package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/hlbar/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report the first problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := loadConfig(path)
			if err != nil {
				return err
			}
			if res.File == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "config: ok (defaults, no file)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config: ok (%s)\n", res.File)
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "", "Config file path (default: ~/.config/hlbar/config.yaml)")

	var (
		printPath string
		defaults  bool
	)
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := loadConfig(printPath)
				if err != nil {
					return err
				}
				cfg = res.Config
				if res.File != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", res.File)
				}
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	printCmd.Flags().StringVar(&printPath, "path", "", "Config file path (default: ~/.config/hlbar/config.yaml)")
	printCmd.Flags().BoolVar(&defaults, "defaults", false, "Print built-in defaults (no files)")

	cmd.AddCommand(validate, printCmd)
	return cmd
}
