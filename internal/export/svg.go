package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/render"
)

type Palette struct {
	Background string
	Membrane   string
	Ripple     string
	Normal     string
	Hovered    string
	Active     string
	Dimmed     string
	Text       string
}

var DefaultPalette = Palette{
	Background: "#0a0a12",
	Membrane:   "#5fd7af",
	Ripple:     "#afffd7",
	Normal:     "#5f87ff",
	Hovered:    "#87afff",
	Active:     "#ff87d7",
	Dimmed:     "#303048",
	Text:       "#ffffff",
}

func (p Palette) fill(c interact.Class) string {
	switch c {
	case interact.ClassHovered:
		return p.Hovered
	case interact.ClassActive:
		return p.Active
	case interact.ClassDimmed:
		return p.Dimmed
	default:
		return p.Normal
	}
}

// SceneToSVG renders a scene as a standalone SVG document.
func SceneToSVG(sc render.Scene, pal Palette) string {
	if sc.Width <= 0 || sc.Height <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, sc.Width, sc.Height, sc.Width, sc.Height, pal.Background))

	if len(sc.Outline) > 1 {
		sb.WriteString(fmt.Sprintf(`<path class="membrane" fill="none" stroke="%s" stroke-width="2" d="M`, pal.Membrane))
		for i, p := range sc.Outline {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
			}
		}
		sb.WriteString(" Z\"/>\n")
	}

	for _, r := range sc.Ripples {
		sb.WriteString(fmt.Sprintf(`<circle class="ripple" cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-opacity="%.2f"/>
`, r.X, r.Y, r.Radius, pal.Ripple, r.Alpha))
	}

	for _, s := range sc.Sprites {
		id := html.EscapeString(s.ID)
		sb.WriteString(fmt.Sprintf(`<g class="entity %s" id="%s">
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12" text-anchor="middle" dominant-baseline="middle">%s</text>
</g>
`, s.Class, id, s.X, s.Y, s.Radius, pal.fill(s.Class), s.X, s.Y, pal.Text, id))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
