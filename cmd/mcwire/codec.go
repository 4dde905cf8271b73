package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

func varintCmd() *cobra.Command {
	var bits int

	cmd := &cobra.Command{
		Use:   "varint",
		Short: "Encode or decode variable-length integers",
		Long: `Encode or decode a LEB128 varint. --bits sets the signed range the
value must fit: 32 for VarInt, 64 for VarLong.

Examples:
  mcwire varint encode -- -1
  mcwire varint decode ff ff ff ff 0f
  mcwire varint decode --bits 64 ff ff ff ff ff ff ff ff ff 01`,
	}
	cmd.PersistentFlags().IntVarP(&bits, "bits", "b", protocol.VarIntBits, "Bit width of the value (1-64)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <n>",
			Short: "Encode a varint",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.ParseInt(args[0], 0, 64)
				if err != nil {
					return argError("%q is not an integer: %w", args[0], err)
				}
				data, err := protocol.PackVarint(n, bits)
				if err != nil {
					return decodeFailure(err, nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatHex(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <hex>...",
			Short: "Decode a varint",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := parseHex(args)
				if err != nil {
					return err
				}
				b := protocol.NewBuffer(data)
				v, err := b.UnpackVarint(bits)
				if err != nil {
					return decodeFailure(err, data)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d (%d bytes)\n", v, b.Position())
				return nil
			},
		},
	)
	return cmd
}

func stringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "string",
		Short: "Encode or decode length-prefixed UTF-8 strings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <text>",
			Short: "Encode a string",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := protocol.PackString(args[0])
				if err != nil {
					return decodeFailure(err, nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatHex(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <hex>...",
			Short: "Decode a string",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := parseHex(args)
				if err != nil {
					return err
				}
				s, err := protocol.NewBuffer(data).UnpackString()
				if err != nil {
					return decodeFailure(err, data)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strconv.Quote(s))
				return nil
			},
		},
	)
	return cmd
}

func posCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pos",
		Short: "Encode or decode packed block positions",
		Long: `Encode or decode a block position packed into 64 bits: 26 bits of x,
26 bits of z and 12 bits of y.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <x> <y> <z>",
			Short: "Encode a position",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				var xyz [3]int32
				for i, a := range args {
					n, err := strconv.ParseInt(a, 10, 32)
					if err != nil {
						return argError("%q is not a 32-bit integer: %w", a, err)
					}
					xyz[i] = int32(n)
				}
				data, err := protocol.PackPosition(xyz[0], xyz[1], xyz[2])
				if err != nil {
					return decodeFailure(err, nil)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatHex(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <hex>...",
			Short: "Decode a position",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := parseHex(args)
				if err != nil {
					return err
				}
				p, err := protocol.NewBuffer(data).UnpackPosition()
				if err != nil {
					return decodeFailure(err, data)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			},
		},
	)
	return cmd
}
