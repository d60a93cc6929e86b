package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"serialterm/internal/display"
	"serialterm/internal/model"
)

// termCmd represents the term command
var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Open an interactive terminal session",
	Long: `Open an interactive terminal session on a serial port.

Incoming traffic is printed as it arrives; typed lines are sent to the
device using the configured format and line ending. A few commands are
available inside the session:

  /quit              leave the session
  /stats             show traffic counters
  /hex               toggle between ascii and hex send format
  /repeat <dur> <s>  resend <s> every <dur> (e.g. /repeat 2s AT)
  /stop              stop a running repeat
  /reset             clear a fault after the device was lost`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		params := a.cfg.Parameters()
		if params.Port == "" {
			return fmt.Errorf("no serial port given; use --port or the config file")
		}

		formatter := display.New(display.Config{
			Format:     a.cfg.DisplayFormat(),
			Timestamps: a.cfg.Display.Timestamps,
			ShowTiming: a.cfg.Display.ShowTiming,
			Filter:     a.cfg.Display.Filter,
		}, a.logger)

		sub := a.bus.Subscribe(func(ev model.Event) {
			switch ev.Type {
			case model.EventStateChanged:
				fmt.Printf("-- %s -> %s\n", ev.OldState, ev.NewState)
			case model.EventIoFault:
				if ev.Err != nil {
					fmt.Printf("-- fault (%s): %v\n", ev.Fault, ev.Err)
				} else {
					fmt.Printf("-- fault (%s)\n", ev.Fault)
				}
			case model.EventDataReceived, model.EventDataSent:
				if line, show := formatter.Render(ev.Frame); show {
					fmt.Println(line)
				}
			}
		})
		defer sub.Unsubscribe()

		if err := a.engine.Connect(params); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		sendFormat := a.cfg.SendFormat()
		for {
			select {
			case sig := <-sigCh:
				fmt.Printf("\n-- received %s, closing\n", sig)
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if strings.HasPrefix(line, "/") {
					if quit := a.runSessionCommand(line, &sendFormat); quit {
						return nil
					}
					continue
				}
				if line == "" {
					continue
				}
				if err := a.engine.SendText(line, sendFormat, a.cfg.LineEnding()); err != nil {
					fmt.Printf("-- send failed: %v\n", err)
				}
			}
		}
	},
}

// runSessionCommand executes one slash command; returns true to quit
func (a *app) runSessionCommand(line string, sendFormat *model.Format) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/stats":
		stats := a.engine.Stats()
		fmt.Printf("-- rx %d bytes in %d frames, tx %d bytes in %d frames\n",
			stats.BytesReceived, stats.FramesReceived,
			stats.BytesSent, stats.FramesSent)
		if !stats.ConnectedAt.IsZero() {
			fmt.Printf("-- connected for %s\n", time.Since(stats.ConnectedAt).Round(time.Second))
		}

	case "/hex":
		if *sendFormat == model.FormatHex {
			*sendFormat = model.FormatASCII
		} else {
			*sendFormat = model.FormatHex
		}
		fmt.Printf("-- send format is now %s\n", *sendFormat)

	case "/repeat":
		if len(fields) < 3 {
			fmt.Println("-- usage: /repeat <interval> <text>")
			return false
		}
		interval, err := time.ParseDuration(fields[1])
		if err != nil {
			fmt.Printf("-- bad interval: %v\n", err)
			return false
		}
		text := strings.Join(fields[2:], " ")
		payload, err := encodeForSend(text, *sendFormat, a.cfg.LineEnding())
		if err != nil {
			fmt.Printf("-- bad payload: %v\n", err)
			return false
		}
		if err := a.engine.StartRepeat(payload, interval); err != nil {
			fmt.Printf("-- repeat failed: %v\n", err)
		} else {
			fmt.Printf("-- repeating every %s\n", interval)
		}

	case "/stop":
		a.engine.StopRepeat()
		fmt.Println("-- repeat stopped")

	case "/reset":
		if err := a.engine.Reset(); err != nil {
			fmt.Printf("-- reset failed: %v\n", err)
		}

	default:
		fmt.Printf("-- unknown command %s\n", fields[0])
	}
	return false
}

func init() {
	rootCmd.AddCommand(termCmd)
}
