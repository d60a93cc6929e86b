package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"serialterm/internal/codec"
	"serialterm/internal/display"
	"serialterm/internal/model"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <data>",
	Short: "Send data to a serial port and print the response",
	Long: `Send a single payload to a serial port.

The payload is sent as ASCII text by default; with --hex it is parsed
as whitespace-separated hex bytes instead (e.g. "48 65 6C 6C 6F").
The command stays connected for --wait to print whatever the device
answers, then disconnects.

Example usage:
  serialterm send "AT+GMR" --port /dev/ttyUSB0 --line-ending nlcr
  serialterm send "DE AD BE EF" --port /dev/ttyUSB0 --hex --wait 2s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexMode, _ := cmd.Flags().GetBool("hex")
		lineEnding, _ := cmd.Flags().GetString("line-ending")
		wait, _ := cmd.Flags().GetDuration("wait")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		params := a.cfg.Parameters()
		if params.Port == "" {
			return fmt.Errorf("no serial port given; use --port or the config file")
		}

		format := a.cfg.SendFormat()
		if hexMode {
			format = model.FormatHex
		}
		eol := a.cfg.LineEnding()
		if lineEnding != "" {
			eol = codec.LineEnding(lineEnding)
			if !eol.Valid() {
				return fmt.Errorf("invalid line ending %q; use none, nl, cr or nlcr", lineEnding)
			}
		}

		formatter := display.New(display.Config{Format: a.cfg.DisplayFormat()}, a.logger)
		sub := a.bus.SubscribeTypes(func(ev model.Event) {
			if line, show := formatter.Render(ev.Frame); show {
				fmt.Println(line)
			}
		}, model.EventDataReceived)
		defer sub.Unsubscribe()

		if err := a.engine.Connect(params); err != nil {
			return err
		}
		if err := a.engine.SendText(args[0], format, eol); err != nil {
			return err
		}

		if wait > 0 {
			time.Sleep(wait)
		}
		return nil
	},
}

// encodeForSend builds the raw payload for a text in the given format
func encodeForSend(text string, format model.Format, eol codec.LineEnding) ([]byte, error) {
	return codec.Encode(text, format, eol)
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().Bool("hex", false, "parse the payload as hex bytes")
	sendCmd.Flags().String("line-ending", "", "line ending to append: none, nl, cr, nlcr")
	sendCmd.Flags().Duration("wait", time.Second, "how long to wait for a response")
}
