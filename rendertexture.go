package snowfall

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTexture is a persistent offscreen canvas. The simulation surface of
// the dual-surface strategy is one; it is owned by RenderTargets and is never
// inserted into the window directly.
type RenderTexture struct {
	image *ebiten.Image
	w, h  int
}

// NewRenderTexture creates a persistent offscreen canvas of the given size.
func NewRenderTexture(w, h int) *RenderTexture {
	return &RenderTexture{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (rt *RenderTexture) Image() *ebiten.Image {
	return rt.image
}

// Width returns the texture width in pixels.
func (rt *RenderTexture) Width() int {
	return rt.w
}

// Height returns the texture height in pixels.
func (rt *RenderTexture) Height() int {
	return rt.h
}

// Clear fills the texture with transparent black.
func (rt *RenderTexture) Clear() {
	rt.image.Clear()
}

// Fill fills the entire texture with the given color.
func (rt *RenderTexture) Fill(c Color) {
	rt.image.Fill(c.RGBA())
}

// DrawScaledTo copies the whole texture into dst, stretched to fill the
// device-pixel rectangle r.
func (rt *RenderTexture) DrawScaledTo(dst *ebiten.Image, r Rect) {
	if rt.w == 0 || rt.h == 0 || r.Empty() {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width/float64(rt.w), r.Height/float64(rt.h))
	op.GeoM.Translate(r.X, r.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(rt.image, &op)
}

// Resize deallocates the old image and creates a new one at the given
// dimensions. No-op when the size is unchanged.
func (rt *RenderTexture) Resize(width, height int) {
	if width == rt.w && height == rt.h && rt.image != nil {
		return
	}
	if rt.image != nil {
		rt.image.Deallocate()
	}
	rt.image = ebiten.NewImage(width, height)
	rt.w = width
	rt.h = height
}

// Dispose deallocates the underlying image. The RenderTexture should not be
// used after calling Dispose.
func (rt *RenderTexture) Dispose() {
	if rt.image != nil {
		rt.image.Deallocate()
		rt.image = nil
	}
}
