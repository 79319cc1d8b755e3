package snowfall

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Fog parameters: a white ramp from transparent to FogAlpha over the bottom
// FogFraction of the simulation height.
const (
	FogFraction = 0.25
	FogAlpha    = 0.45
	fogSteps    = 256
)

// FogGradient returns a 1 x steps premultiplied image whose alpha rises
// linearly from 0 at the top row to FogAlpha at the bottom row.
func FogGradient(steps int) *image.RGBA {
	if steps < 2 {
		steps = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, steps))
	for y := 0; y < steps; y++ {
		t := float64(y) / float64(steps-1)
		a := uint8(math.Round(t * FogAlpha * 255))
		img.SetRGBA(0, y, color.RGBA{R: a, G: a, B: a, A: a})
	}
	return img
}

// FogRect returns the simulation-space rectangle the fog covers.
func FogRect(width, height float64) Rect {
	h := height * FogFraction
	return Rect{X: 0, Y: height - h, Width: width, Height: h}
}

// fogLayer caches the gradient as a GPU image.
type fogLayer struct {
	img *ebiten.Image
}

func (f *fogLayer) image() *ebiten.Image {
	if f.img == nil {
		f.img = ebiten.NewImageFromImage(FogGradient(fogSteps))
	}
	return f.img
}

// draw stretches the gradient over the fog band of a width x height
// simulation, mapped onto dst through p.
func (f *fogLayer) draw(dst *ebiten.Image, width, height float64, p placement) {
	r := FogRect(width, height)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width, r.Height/fogSteps)
	op.GeoM.Translate(r.X, r.Y)
	op.GeoM.Scale(p.Scale, p.Scale)
	op.GeoM.Translate(p.X, p.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(f.image(), &op)
}
