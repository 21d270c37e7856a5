package export

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/san-kum/organelle/internal/render"
)

// SavePNG rasterises a scene to a PNG file at its native size.
func SavePNG(path string, sc render.Scene, pal Palette) error {
	dc, err := drawScene(sc, pal)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func drawScene(sc render.Scene, pal Palette) (*gg.Context, error) {
	w, h := int(sc.Width), int(sc.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("export: invalid scene size %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(parseHex(pal.Background))
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	if len(sc.Outline) > 1 {
		dc.MoveTo(sc.Outline[0].X, sc.Outline[0].Y)
		for _, p := range sc.Outline[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.SetLineWidth(2)
		dc.SetColor(parseHex(pal.Membrane))
		dc.Stroke()
	}

	ripple := parseHex(pal.Ripple)
	for _, r := range sc.Ripples {
		dc.DrawCircle(r.X, r.Y, r.Radius)
		dc.SetColor(color.NRGBA{R: ripple.R, G: ripple.G, B: ripple.B, A: uint8(r.Alpha * 255)})
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	for _, s := range sc.Sprites {
		dc.DrawCircle(s.X, s.Y, s.Radius)
		dc.SetColor(parseHex(pal.fill(s.Class)))
		dc.Fill()
		dc.SetColor(parseHex(pal.Text))
		dc.DrawStringAnchored(s.ID, s.X, s.Y, 0.5, 0.5)
	}
	return dc, nil
}

// parseHex reads "#rrggbb"; anything else is opaque black.
func parseHex(s string) color.NRGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{A: 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
