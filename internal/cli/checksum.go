package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"serialterm/internal/codec"
	"serialterm/internal/model"
)

// checksumCmd represents the checksum command
var checksumCmd = &cobra.Command{
	Use:   "checksum <data>",
	Short: "Compute checksums over a payload",
	Long: `Compute the XOR, 8-bit sum and CRC16-CCITT checksums of a payload.

The payload is ASCII text by default, or whitespace-separated hex
bytes with --hex:

  serialterm checksum "123456789"
  serialterm checksum "01 02 03 FF" --hex`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexMode, _ := cmd.Flags().GetBool("hex")

		format := model.FormatASCII
		if hexMode {
			format = model.FormatHex
		}
		payload, err := codec.Encode(args[0], format, codec.LineEndingNone)
		if err != nil {
			return err
		}

		fmt.Printf("bytes:        %d\n", len(payload))
		fmt.Printf("xor:          %02X\n", codec.ChecksumXOR(payload))
		fmt.Printf("sum8:         %02X\n", codec.ChecksumSum8(payload))
		fmt.Printf("crc16-ccitt:  %04X\n", codec.CRC16CCITT(payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checksumCmd)

	checksumCmd.Flags().Bool("hex", false, "parse the payload as hex bytes")
}
