package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/internal/errors"
	"github.com/pymine-dev/mcwire/pkg/registry"
)

func itemCmd(c *cli) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "item <id|name>",
		Short: "Resolve item ids against a registry dump",
		Long: `Look up an item by protocol id or by name in a registries.json
dump produced by the vanilla data generator. The dump path comes from
--registry or from mcwire.json (registry).

Examples:
  mcwire item 1 --registry registries.json
  mcwire item minecraft:stone`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = c.cfg.RegistryPath()
			}
			if path == "" {
				return errors.New(errors.CodeArgument).
					WithDetail("No registry dump configured").
					WithSuggestion("Pass --registry or set \"registry\" in mcwire.json")
			}
			reg, err := registry.LoadFile(path)
			if err != nil {
				return errors.New(errors.CodeArgument).WithDetail("Cannot load " + path).Wrap(err)
			}

			key := args[0]
			if id, err := strconv.ParseInt(key, 10, 32); err == nil {
				name, ok := reg.Item(int32(id))
				if !ok {
					return argError("no item with id %d", id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			}

			id, ok := reg.ItemID(key)
			if !ok {
				return argError("no item named %q", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "registry", "r", "", "Path to registries.json")

	return cmd
}
