package cmd

import (
	"fmt"
	"os"
	"time"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckpress/internal/catalog"
	"github.com/arcanaland/deckpress/internal/config"
	"github.com/arcanaland/deckpress/internal/pipeline"
	"github.com/arcanaland/deckpress/internal/sheet"
)

var printCmd = &cobra.Command{
	Use:   "print [deck_file]",
	Short: "Render a deck list into a printable PDF of card images",
	Long: `Print resolves every entry of a deck file against the card catalog and
tiles the card images onto Letter-sized sheets, written as a single PDF next
to the deck file.

Deck files are CSV (header with name and count columns) or plain text with
one "<count> <name>" entry per line. Entries accept a card name, a
set/number pair, or a card-detail URL. Tokens referenced by deck cards are
appended after the deck unless --no-tokens is given; tokens named with
--token are always included.

Examples:
  deckpress print burn.txt
  deckpress print --no-tokens commander.csv
  deckpress print -t tm3c/24 -t "Treasure" commander.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckPath := args[0]

		if _, err := os.Stat(deckPath); os.IsNotExist(err) {
			return fmt.Errorf("deck file not found: %s", deckPath)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		noTokens, _ := cmd.Flags().GetBool("no-tokens")
		overrides, _ := cmd.Flags().GetStringArray("token")
		workers, _ := cmd.Flags().GetInt("workers")
		tokenCount, _ := cmd.Flags().GetInt("token-count")

		if workers <= 0 {
			workers = cfg.Workers
		}
		if tokenCount <= 0 {
			tokenCount = cfg.TokenCount
		}
		if noTokens && len(overrides) > 0 {
			colorize.Yellow("Note: --token entries are included despite --no-tokens.")
		}

		client := catalog.NewRetrying(
			catalog.NewScryfall(cfg.CatalogBaseURL, cfg.UserAgent, cfg.RequestsPerSecond),
			cfg.MaxAttempts,
			time.Duration(cfg.BaseBackoffMillis)*time.Millisecond,
		)

		p := pipeline.New(client, pipeline.Options{
			DiscoverTokens: !noTokens,
			TokenOverrides: overrides,
			TokenCount:     tokenCount,
			Workers:        workers,
			LandVariety:    cfg.LandVariety,
			Geometry:       sheet.Letter(cfg.PageDPI),
			Status: func(msg string) {
				fmt.Println(colorize.CyanString("•"), msg)
			},
		})

		outPath, err := p.Run(cmd.Context(), deckPath)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", colorize.GreenString("✓ Wrote"), outPath)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(printCmd)

	printCmd.Flags().Bool("no-tokens", false, "Do not add tokens referenced by deck cards")
	printCmd.Flags().StringArrayP("token", "t", nil, "Add a specific token (name, set/number, or card URL); repeatable")
	printCmd.Flags().Int("workers", 0, "Concurrent catalog fetches (default from config)")
	printCmd.Flags().Int("token-count", 0, "Printed copies per token (default from config)")
}
