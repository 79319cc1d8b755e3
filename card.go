package snowfall

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp" // register bmp decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder
)

// cardMargin is the share of the window left around a card at zoom 1.
const cardMargin = 0.9

// Card is the greeting card artwork. It is drawn centred in the window,
// scaled by its CardZoom, and is both a sizing reference for the snow and
// the element the exports capture.
type Card struct {
	art  image.Image
	gpu  *ebiten.Image
	zoom *CardZoom
	area Rect
}

// NewCard wraps decoded artwork.
func NewCard(art image.Image, zoom ZoomConfig) *Card {
	return &Card{art: art, zoom: NewCardZoom(zoom)}
}

// LoadCard decodes png, jpeg, gif, bmp or webp artwork from path.
func LoadCard(path string, zoom ZoomConfig) (*Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open card %s: %w", path, err)
	}
	defer f.Close()
	art, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode card %s: %w", path, err)
	}
	return NewCard(art, zoom), nil
}

// PlaceholderArt paints a plain card: a deep red face inside a gold rule.
func PlaceholderArt(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gold := image.NewUniform(color.RGBA{R: 0xd4, G: 0xaf, B: 0x37, A: 0xff})
	red := image.NewUniform(color.RGBA{R: 0x8b, G: 0x10, B: 0x1a, A: 0xff})
	xdraw.Draw(img, img.Bounds(), gold, image.Point{}, xdraw.Src)
	border := max(2, min(w, h)/40)
	xdraw.Draw(img, img.Bounds().Inset(border), red, image.Point{}, xdraw.Src)
	return img
}

// Zoom returns the card's zoom control.
func (c *Card) Zoom() *CardZoom {
	return c.zoom
}

// Art returns the source artwork.
func (c *Card) Art() image.Image {
	return c.art
}

// Layout sets the logical window area the card is centred in.
func (c *Card) Layout(area Rect) {
	c.area = area
}

// fit returns the scale that fits the artwork inside the layout area at
// zoom 1, never enlarging it.
func (c *Card) fit() float64 {
	b := c.art.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || c.area.Empty() {
		return 1
	}
	s := math.Min(c.area.Width*cardMargin/float64(b.Dx()), c.area.Height*cardMargin/float64(b.Dy()))
	return math.Min(1, s)
}

// Rect implements SizeReference: the card's layout rectangle at zoom 1.
// Zoom scales the card about this rectangle's centre on screen only, so
// the snow laid over it keeps its simulation size while zooming.
func (c *Card) Rect() (Rect, bool) {
	return c.rectAt(1)
}

// DisplayScale returns the zoom currently on screen.
func (c *Card) DisplayScale() float64 {
	if c == nil {
		return 1
	}
	return c.zoom.Shown()
}

// ShownRect returns the on-screen rectangle of the card at the zoom
// currently shown.
func (c *Card) ShownRect() (Rect, bool) {
	return c.rectAt(c.DisplayScale())
}

func (c *Card) rectAt(zoom float64) (Rect, bool) {
	if c == nil || c.art == nil {
		return Rect{}, false
	}
	b := c.art.Bounds()
	s := c.fit() * zoom
	w, h := float64(b.Dx())*s, float64(b.Dy())*s
	r := Rect{
		X:      c.area.X + (c.area.Width-w)/2,
		Y:      c.area.Y + (c.area.Height-h)/2,
		Width:  w,
		Height: h,
	}
	return r, !r.Empty()
}

// Bounds returns the artwork bounds translated to the origin.
func (c *Card) Bounds() image.Rectangle {
	b := c.art.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy())
}

// Draw paints the artwork into r of dst, resampling when the sizes differ.
func (c *Card) Draw(dst xdraw.Image, r image.Rectangle) {
	src := c.art.Bounds()
	if r.Dx() == src.Dx() && r.Dy() == src.Dy() {
		xdraw.Draw(dst, r, c.art, src.Min, xdraw.Over)
		return
	}
	xdraw.CatmullRom.Scale(dst, r, c.art, src, xdraw.Over, nil)
}

// drawTo paints the card into the window at the given device scale.
func (c *Card) drawTo(screen *ebiten.Image, deviceScale float64) {
	r, ok := c.ShownRect()
	if !ok {
		return
	}
	if c.gpu == nil {
		c.gpu = ebiten.NewImageFromImage(c.art)
	}
	b := c.art.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width/float64(b.Dx()), r.Height/float64(b.Dy()))
	op.GeoM.Translate(r.X, r.Y)
	op.GeoM.Scale(deviceScale, deviceScale)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(c.gpu, &op)
}
