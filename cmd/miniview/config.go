package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/miniview/internal/config"
)

func (a *app) newConfigCmd(opts *showOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(a.newConfigValidateCmd(opts))
	cmd.AddCommand(a.newConfigPrintCmd(opts))
	cmd.AddCommand(a.newConfigExplainCmd(opts))
	return cmd
}

func (a *app) newConfigValidateCmd(opts *showOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(a.stdout, "warning: %s\n", w)
			}
			fmt.Fprintln(a.stdout, "config: ok")
			return nil
		},
	}
}

func (a *app) newConfigPrintCmd(opts *showOptions) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := loadConfig(opts.configPath)
				if err != nil {
					return err
				}
				cfg = res.Config
				if res.File != "" {
					fmt.Fprintf(a.stdout, "# file: %s\n", res.File)
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print built-in defaults (no files)")
	return cmd
}

func (a *app) newConfigExplainCmd(opts *showOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "explain <key>",
		Short:     "Show a config value and where it was set",
		Args:      usageArgs(cobra.ExactArgs(1)),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "key: %s\n", args[0])
			fmt.Fprintf(a.stdout, "source: %s\n", config.FormatSource(src))
			fmt.Fprintf(a.stdout, "value: %s\n", value)
			return nil
		},
	}
}
