// Package media supplies a default implementation of docmodel.ImageConverter.
// Full WMF/EMF vector decoding is an external collaborator's job (spec's
// core scope stops at "call the converter"); this package gives that
// interface a real, working default instead of a stub that always errors:
// a labelled placeholder raster so an unconvertable vector image still
// renders as something visibly present rather than vanishing silently.
package media

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
)

// PlaceholderConverter renders a neutral rectangle with a short caption in
// place of actually decoding WMF/EMF vector data.
type PlaceholderConverter struct {
	// Caption is drawn inside the placeholder; defaults to "embedded
	// vector image" when empty.
	Caption string
}

// ConvertEMFToPNG implements docmodel.ImageConverter.
func (p PlaceholderConverter) ConvertEMFToPNG(data []byte, width, height *int) ([]byte, error) {
	w, h := 240, 180
	if width != nil && *width > 0 {
		w = *width
	}
	if height != nil && *height > 0 {
		h = *height
	}

	caption := p.Caption
	if caption == "" {
		caption = "embedded vector image"
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.RGBA{R: 160, G: 160, B: 160, A: 255})
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(w-2), float64(h-2))
	dc.Stroke()
	dc.SetColor(color.RGBA{R: 90, G: 90, B: 90, A: 255})
	// gg.NewContext installs a built-in basic font face by default, so no
	// LoadFontFace call is needed for this placeholder's short caption.
	dc.DrawStringWrapped(caption, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w)-16, 1.4, gg.AlignCenter)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("media: encode placeholder png: %w", err)
	}
	return buf.Bytes(), nil
}
