package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// frameReport describes one decoded frame. It is printed by the frame
// command and returned by the debug server.
type frameReport struct {
	Length     int    `json:"length"`
	DataLength int    `json:"dataLength"`
	Compressed bool   `json:"compressed"`
	Payload    string `json:"payload"`
	PacketID   *int32 `json:"packetId,omitempty"`
	Trailing   int    `json:"trailing"`
}

func newFrameReport(f *protocol.Frame, rest []byte) frameReport {
	r := frameReport{
		Length:     f.Length,
		DataLength: f.DataLength,
		Compressed: f.Compressed(),
		Payload:    formatHex(f.Payload),
		Trailing:   len(rest),
	}
	// Packet payloads start with their id; absent or malformed ids are
	// simply not reported.
	if id, err := f.Buffer().UnpackVarInt(); err == nil {
		r.PacketID = &id
	}
	return r
}

func (r frameReport) String() string {
	s := fmt.Sprintf("length %d, data length %d, compressed %t", r.Length, r.DataLength, r.Compressed)
	if r.PacketID != nil {
		s += fmt.Sprintf(", packet 0x%02x", *r.PacketID)
	}
	if r.Trailing > 0 {
		s += fmt.Sprintf(", %d trailing bytes", r.Trailing)
	}
	return s + "\npayload: " + r.Payload
}

func frameCmd(c *cli) *cobra.Command {
	var (
		threshold int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Wrap payloads in frames or unwrap them",
		Long: `Encode or decode a length-prefixed frame. With a threshold of 0 or
more, frames carry a Data Length field and payloads of at least
threshold bytes are zlib-compressed. The default threshold comes
from mcwire.json (codec.threshold, -1 when unset).

Examples:
  mcwire frame encode 00 2a
  mcwire frame decode --threshold 256 03 00 00 2a`,
	}
	cmd.PersistentFlags().IntVarP(&threshold, "threshold", "t", -1, "Compression threshold (-1 disables compression)")

	resolve := func(cmd *cobra.Command) int {
		if cmd.Flags().Changed("threshold") {
			return threshold
		}
		return c.cfg.Threshold()
	}

	decode := &cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode a frame",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHex(args)
			if err != nil {
				return err
			}
			t := resolve(cmd)
			f, rest, err := protocol.DecodeFrame(data, t)
			if err != nil {
				return decodeFailure(err, data)
			}
			c.logger.Debug("decoded frame", "length", f.Length, "threshold", t)

			report := newFrameReport(f, rest)
			if asJSON {
				out, err := json.Marshal(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	decode.Flags().BoolVar(&asJSON, "json", false, "Print the decoded frame as JSON")

	encode := &cobra.Command{
		Use:   "encode <hex>...",
		Short: "Encode a payload as a frame",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseHex(args)
			if err != nil {
				return err
			}
			data, err := protocol.NewBuffer(payload).ToBytes(resolve(cmd))
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
