package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/dilemma/internal/export"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dilemma configuration",
		Long: `Show, save and validate the effective configuration.

The effective configuration is built from the defaults, then
~/.dilemma/config.yaml (or --config), then DILEMMA_* environment
variables, then flags.

Examples:
  dilemma config show
  dilemma config save ~/.dilemma/config.yaml --rounds 200
  dilemma config validate --config experiment.json`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSaveCmd(),
		newConfigValidateCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return export.WriteJSON(out, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <path>",
		Short: "Write the effective configuration to a file",
		Long: `Write the effective configuration to a file: JSON when the path ends in
.json, YAML otherwise. The configuration is validated first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveToFile(args[0]); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return export.WriteJSON(out, map[string]string{"status": "saved", "path": args[0]})
			}
			fmt.Fprintf(out, "Configuration saved to %s\n", args[0])
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := cfg.Validate(); err != nil {
				if jsonOut {
					export.WriteJSON(out, map[string]any{"valid": false, "error": err.Error()})
				}
				return err
			}

			if jsonOut {
				return export.WriteJSON(out, map[string]any{"valid": true})
			}
			fmt.Fprintf(out, "Configuration is valid (%d strategies, %d rounds, %d repeats)\n",
				len(cfg.StrategyNames), cfg.Rounds, cfg.Repeats)
			return nil
		},
	}
}
