// Package pdf serializes layout pages into a single Letter document
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

// Letter dimensions in millimeters; each page image is placed full-bleed
const (
	pageWidthMM  = 215.9
	pageHeightMM = 279.4
)

const jpegQuality = 92

// Assemble writes one PDF page per layout page to w, in order
func Assemble(w io.Writer, pages []image.Image) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to assemble")
	}

	doc := fpdf.New("P", "mm", "Letter", "")
	for i, page := range pages {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, page, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		doc.AddPage()
		doc.RegisterImageOptionsReader(name, opts, &buf)
		doc.ImageOptions(name, 0, 0, pageWidthMM, pageHeightMM, false, opts, 0, "")
	}

	if doc.Err() {
		return fmt.Errorf("assembling document: %w", doc.Error())
	}
	return doc.Output(w)
}

// WriteFile assembles the pages and writes the document to path. Nothing
// is written when assembly fails; a partial document is worse than none.
func WriteFile(path string, pages []image.Image) error {
	var buf bytes.Buffer
	if err := Assemble(&buf, pages); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
