package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"serialterm/internal/ports"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports present on this system.

With --details, USB metadata (vendor/product ID, serial number) is
included for ports backed by a USB adapter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		details, _ := cmd.Flags().GetBool("details")

		if details {
			infos, err := ports.Details()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("No serial ports found")
				return nil
			}
			for _, info := range infos {
				fmt.Println(info)
				if info.SerialNumber != "" {
					fmt.Printf("    serial number: %s\n", info.SerialNumber)
				}
			}
			return nil
		}

		names, err := ports.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("details", "d", false, "show USB metadata for each port")
}
