package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/internal/config"
	"github.com/pymine-dev/mcwire/internal/errors"
)

func configCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect mcwire.json",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd(c))
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a mcwire.json with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return errors.New(errors.CodeArgument).
					WithDetail(config.ConfigFileName + " already exists in " + dir).
					WithSuggestion("Use --force to overwrite it")
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func configShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration in effect after defaults are applied, as JSON.
The source file is reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(c.cfg, "", "  ")
			if err != nil {
				return errors.New(errors.CodeInternal).Wrap(err)
			}
			source := c.cfg.Path()
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", source)
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
