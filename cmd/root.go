package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "deckpress",
	Short: "Tool for printing proxy sheets from deck lists",
	Long: `Deckpress turns a deck list into a printable Letter-sized PDF of card
images. Deck entries may be plain card names, set/number pairs like tm3c/24,
or full card-detail URLs; referenced token cards are added automatically.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
