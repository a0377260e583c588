// Package sheet tiles card images into fixed-geometry print pages
package sheet

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Card pairs image bytes with a name for error reporting
type Card struct {
	Name string
	Data []byte
}

// RenderError reports an image that could not be decoded. It is fatal for
// the whole run; a document with missing cards is worse than none.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot render image for %s: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Geometry describes the physical page and card cell dimensions in inches
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	CardWidth  float64
	CardHeight float64
	Gutter     float64 // spacing between adjacent cells
	DPI        int
}

// Letter returns the default geometry: standard card proportions on a
// Letter sheet at the given raster resolution
func Letter(dpi int) Geometry {
	return Geometry{
		PageWidth:  8.5,
		PageHeight: 11.0,
		CardWidth:  2.49,
		CardHeight: 3.48,
		Gutter:     0.01,
		DPI:        dpi,
	}
}

// Columns returns the maximum number of card columns that fit on the page
func (g Geometry) Columns() int {
	return int(g.PageWidth / (g.CardWidth + g.Gutter))
}

// Rows returns the maximum number of card rows that fit on the page
func (g Geometry) Rows() int {
	return int(g.PageHeight / (g.CardHeight + g.Gutter))
}

// PerPage returns the cell count of one page
func (g Geometry) PerPage() int {
	return g.Rows() * g.Columns()
}

// PageCount returns the number of pages needed for n cards
func (g Geometry) PageCount(n int) int {
	per := g.PerPage()
	return (n + per - 1) / per
}

func (g Geometry) pixels(inches float64) int {
	return int(inches*float64(g.DPI) + 0.5)
}

// Engine packs card images into pages
type Engine struct {
	geo Geometry
}

// NewEngine creates a layout engine for the given geometry
func NewEngine(geo Geometry) *Engine {
	return &Engine{geo: geo}
}

// Geometry returns the engine's page geometry
func (e *Engine) Geometry() Geometry {
	return e.geo
}

// Layout tiles the card sequence into pages, filling cells in row-major
// order and starting a new page when the grid is exhausted. Cell order
// exactly preserves input order; trailing cells of the final page stay
// white. Decoding failures surface as *RenderError.
func (e *Engine) Layout(cards []Card) ([]image.Image, error) {
	if len(cards) == 0 {
		return nil, nil
	}

	g := e.geo
	rows, cols := g.Rows(), g.Columns()
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("card cell %gx%g in does not fit a %gx%g in page",
			g.CardWidth, g.CardHeight, g.PageWidth, g.PageHeight)
	}

	cellW := g.pixels(g.CardWidth)
	cellH := g.pixels(g.CardHeight)
	gutter := g.pixels(g.Gutter)
	pageW := g.pixels(g.PageWidth)
	pageH := g.pixels(g.PageHeight)

	// Center the grid inside the page
	gridW := cols*cellW + (cols-1)*gutter
	gridH := rows*cellH + (rows-1)*gutter
	originX := (pageW - gridW) / 2
	originY := (pageH - gridH) / 2

	perPage := rows * cols
	pages := make([]image.Image, 0, g.PageCount(len(cards)))

	var page *image.RGBA
	for i, c := range cards {
		img, _, err := image.Decode(bytes.NewReader(c.Data))
		if err != nil {
			return nil, &RenderError{Name: c.Name, Err: err}
		}

		cell := i % perPage
		if cell == 0 {
			page = blankPage(pageW, pageH)
			pages = append(pages, page)
		}

		x := originX + (cell%cols)*(cellW+gutter)
		y := originY + (cell/cols)*(cellH+gutter)

		scaled := resize.Resize(uint(cellW), uint(cellH), img, resize.Lanczos3)
		target := image.Rect(x, y, x+cellW, y+cellH)
		draw.Draw(page, target, scaled, scaled.Bounds().Min, draw.Src)
	}

	return pages, nil
}

func blankPage(w, h int) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return page
}
