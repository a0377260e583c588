package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/color" // This is the standard library color package
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"golang.org/x/term"

	"github.com/arcanaland/deckpress/internal/card"
	"github.com/arcanaland/deckpress/internal/catalog"
	"github.com/arcanaland/deckpress/internal/config"

	colorize "github.com/fatih/color" // Rename this import to avoid the conflict
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [identifier]",
	Short: "Display a card from the catalog with ANSI art",
	Long: `Show resolves a single identifier against the card catalog and displays
the card with ANSI terminal art. The identifier takes the same forms as a
deck entry: a card name, a set/number pair, or a card-detail URL.

Examples:
  deckpress show "Otharri, Suns' Glory"
  deckpress show tm3c/24
  deckpress show https://scryfall.com/card/tm3c/24/treasure`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := card.ParseIdentifier(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %v", err)
		}

		client := catalog.NewRetrying(
			catalog.NewScryfall(cfg.CatalogBaseURL, cfg.UserAgent, cfg.RequestsPerSecond),
			cfg.MaxAttempts,
			time.Duration(cfg.BaseBackoffMillis)*time.Millisecond,
		)

		rec, err := client.Lookup(cmd.Context(), id)
		if err != nil {
			return err
		}

		if rec.ImageURL == "" {
			return fmt.Errorf("no printable image for %s", id)
		}
		data, err := client.FetchImage(cmd.Context(), rec.ImageURL)
		if err != nil {
			return fmt.Errorf("error fetching image: %v", err)
		}

		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("error decoding image: %v", err)
		}

		ansiArt := imageToAnsi(img, 28, 20)
		displayCard(rec, ansiArt)

		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

// imageToAnsi converts an image to ANSI art using half-block characters
func imageToAnsi(img image.Image, width, height int) string {
	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	// Create a buffer for the ANSI output
	var buffer strings.Builder

	// Process the image
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// Get the four pixels that will make up one character cell
			c1 := getColorAt(resized, x, y)
			c2 := getColorAt(resized, x+1, y)
			c3 := getColorAt(resized, x, y+1)
			c4 := getColorAt(resized, x+1, y+1)

			// Top pixels as foreground, bottom pixels as background
			col1, _ := colorful.MakeColor(c1)
			col2, _ := colorful.MakeColor(c2)
			col3, _ := colorful.MakeColor(c3)
			col4, _ := colorful.MakeColor(c4)

			upperHalfFg := averageColor(col1, col2)
			lowerHalfBg := averageColor(col3, col4)

			fg := colorfulToColor(upperHalfFg)
			bg := colorfulToColor(lowerHalfBg)

			buffer.WriteString(ansiColorString('▀', fg, bg))
		}
		buffer.WriteString("\n")
	}

	return buffer.String()
}

// getColorAt returns the color at a specific coordinate
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255} // Return black for out-of-bounds
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// colorfulToColor converts a colorful.Color to a standard color.Color
func colorfulToColor(c colorful.Color) color.Color {
	r := uint8(c.R * 255)
	g := uint8(c.G * 255)
	b := uint8(c.B * 255)

	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ansiColorString formats a character with truecolor ANSI codes
func ansiColorString(char rune, fg, bg color.Color) string {
	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()

	// Convert from uint32 to uint8 (RGBA() returns values in range 0-65535)
	r1, g1, b1 = r1>>8, g1>>8, b1>>8
	r2, g2, b2 = r2>>8, g2>>8, b2>>8

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1, g1, b1, r2, g2, b2, char)
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	if width < 10 {
		width = 40 // Use a sensible default if width is too small
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// displayCard displays the card information beside its ANSI art
func displayCard(rec *card.Record, ansiArt string) {
	ansiLines := strings.Split(ansiArt, "\n")
	maxAnsiWidth := 0
	for _, line := range ansiLines {
		// Visible width excludes ANSI escape sequences
		visibleWidth := len(stripAnsi(line))
		if visibleWidth > maxAnsiWidth {
			maxAnsiWidth = visibleWidth
		}
	}

	// Get terminal width
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80 // Default if we can't get terminal width
	}

	var infoLines []string
	infoLines = append(infoLines, colorize.CyanString("Card: ")+colorize.HiWhiteString("%s", rec.Name))
	infoLines = append(infoLines, colorize.CyanString("Set:  ")+colorize.HiWhiteString("%s/%s", rec.SetCode, rec.Number))
	if rec.IsToken {
		infoLines = append(infoLines, colorize.CyanString("Kind: ")+colorize.HiWhiteString("token"))
	}

	spacing := 4
	infoStartCol := maxAnsiWidth + spacing

	infoWidth := width - infoStartCol - 2 // Leave a small margin
	if infoWidth < 20 {
		infoWidth = 20
	}

	if rec.TypeLine != "" {
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, colorize.CyanString("Type:"))
		infoLines = append(infoLines, wrapText(rec.TypeLine, infoWidth)...)
	}
	if len(rec.TokenRefs) > 0 {
		names := make([]string, len(rec.TokenRefs))
		for i, ref := range rec.TokenRefs {
			names[i] = ref.String()
		}
		infoLines = append(infoLines, "")
		infoLines = append(infoLines, colorize.CyanString("Makes:"))
		infoLines = append(infoLines, wrapText(strings.Join(names, ", "), infoWidth)...)
	}

	fmt.Println()

	maxLines := max(len(ansiLines), len(infoLines))
	for i := 0; i < maxLines; i++ {
		fmt.Print("  ")
		if i < len(ansiLines) {
			fmt.Print(ansiLines[i])
			visibleWidth := len(stripAnsi(ansiLines[i]))
			fmt.Print(strings.Repeat(" ", infoStartCol-visibleWidth))
		} else {
			fmt.Print(strings.Repeat(" ", infoStartCol))
		}

		if i < len(infoLines) {
			fmt.Print(infoLines[i])
		}

		fmt.Println()
	}

	fmt.Println()
}

// stripAnsi removes ANSI escape sequences from a string
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// max returns the maximum of two integers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
