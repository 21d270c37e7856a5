package export

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/render"
	"github.com/san-kum/organelle/internal/vec"
)

func testScene() render.Scene {
	return render.Scene{
		Width:  200,
		Height: 100,
		Outline: []vec.Vec2{
			vec.New(10, 10), vec.New(190, 10), vec.New(190, 90), vec.New(10, 90),
		},
		Sprites: []render.Sprite{
			{ID: "genome", X: 50, Y: 50, Radius: 20, Class: interact.ClassNormal},
			{ID: "a<b", X: 150, Y: 50, Radius: 30, Class: interact.ClassActive},
		},
		Ripples: []render.Ripple{{X: 190, Y: 50, Radius: 8, Alpha: 0.5}},
	}
}

func TestSceneToSVG(t *testing.T) {
	svg := SceneToSVG(testScene(), DefaultPalette)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete SVG document")
	}
	if !strings.Contains(svg, `width="200" height="100"`) {
		t.Error("expected scene dimensions")
	}
	if n := strings.Count(svg, `class="entity`); n != 2 {
		t.Errorf("expected 2 entities, got %d", n)
	}
	if !strings.Contains(svg, `class="entity active"`) {
		t.Error("expected active class")
	}
	if !strings.Contains(svg, "a&lt;b") || strings.Contains(svg, "a<b") {
		t.Error("expected escaped entity id")
	}
	if !strings.Contains(svg, `stroke-opacity="0.50"`) {
		t.Error("expected ripple opacity")
	}
	if !strings.Contains(svg, "M10.0,10.0 L190.0,10.0") {
		t.Error("expected membrane path")
	}
}

func TestSceneToSVG_Empty(t *testing.T) {
	if svg := SceneToSVG(render.Scene{}, DefaultPalette); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.png")
	if err := SavePNG(path, testScene(), DefaultPalette); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("expected 200x100, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	bg := parseHex(DefaultPalette.Background)
	if uint8(r>>8) != bg.R || uint8(g>>8) != bg.G || uint8(b>>8) != bg.B {
		t.Errorf("expected background colour at corner, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestSavePNG_InvalidSize(t *testing.T) {
	if err := SavePNG(filepath.Join(t.TempDir(), "x.png"), render.Scene{}, DefaultPalette); err == nil {
		t.Error("expected error for empty scene")
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff8000", color.NRGBA{255, 128, 0, 255}},
		{"#000000", color.NRGBA{0, 0, 0, 255}},
		{"red", color.NRGBA{A: 255}},
		{"#zzzzzz", color.NRGBA{A: 255}},
	}
	for _, tt := range tests {
		if got := parseHex(tt.in); got != tt.want {
			t.Errorf("parseHex(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
