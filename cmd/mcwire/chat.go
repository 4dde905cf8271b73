package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/internal/errors"
	"github.com/pymine-dev/mcwire/pkg/chat"
	"github.com/pymine-dev/mcwire/pkg/protocol"
)

func chatCmd(c *cli) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Encode or render chat components",
		Long: `Encode text as a JSON chat component, or decode one and render it.

Render modes:
  plain   formatting codes stripped
  normal  formatting kept as § codes
  color   formatting shown as terminal colors

The default mode comes from mcwire.json (chat.mode, color when unset).`,
	}

	decode := &cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode and render a chat component",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := c.cfg.ChatMode()
			if mode != "" {
				var err error
				if m, err = chat.ParseMode(mode); err != nil {
					return errors.New(errors.CodeArgument).
						Wrap(err).
						WithSuggestion("Use plain, normal or color")
				}
			}

			data, err := parseHex(args)
			if err != nil {
				return err
			}
			msg, err := chat.FromBuffer(protocol.NewBuffer(data))
			if err != nil {
				return decodeFailure(err, data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Render(m))
			return nil
		},
	}
	decode.Flags().StringVarP(&mode, "mode", "m", "", "Render mode: plain, normal or color")

	encode := &cobra.Command{
		Use:   "encode <text>",
		Short: "Encode text as a chat component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := chat.FromString(args[0]).MarshalBuffer()
			if err != nil {
				return decodeFailure(err, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatHex(data))
			return nil
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}
