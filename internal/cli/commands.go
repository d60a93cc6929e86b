package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"serialterm/internal/commands"
)

// commandsCmd represents the commands command
var commandsCmd = &cobra.Command{
	Use:   "commands [set]",
	Short: "Show the built-in AT command references",
	Long: `Show the built-in AT command references.

Without an argument, the available sets are listed. With a set name,
its commands are printed grouped by category:

  serialterm commands
  serialterm commands esp8266
  serialterm commands hc-05/06`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, set := range commands.Sets() {
				total := 0
				for _, cat := range set.Categories {
					total += len(cat.Commands)
				}
				fmt.Printf("%-12s %d commands\n", set.Name, total)
			}
			return nil
		}

		set, found := commands.Find(args[0])
		if !found {
			return fmt.Errorf("unknown command set %q", args[0])
		}

		for _, cat := range set.Categories {
			fmt.Printf("%s\n%s\n", cat.Name, strings.Repeat("-", len(cat.Name)))
			for _, c := range cat.Commands {
				fmt.Printf("  %-44s %s\n", c.Command, c.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
