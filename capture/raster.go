package capture

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/phanxgames/snowfall"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// painter draws flakes into RGBA frames in software. One painter serves one
// capture session.
type painter struct {
	z       vector.Rasterizer
	maskPix []uint8
	fog     *image.RGBA
}

// mask returns a cleared w×h coverage buffer reused across flakes.
func (p *painter) mask(w, h int) *image.Alpha {
	n := w * h
	if cap(p.maskPix) < n {
		p.maskPix = make([]uint8, n)
	}
	pix := p.maskPix[:n]
	clear(pix)
	return &image.Alpha{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
}

// drawFlakes paints every flake as an antialiased filled circle. Each
// circle is rasterized into a coverage mask over its own bounding box, and
// the mask is composited with clipping to dst.
func (p *painter) drawFlakes(dst *image.RGBA, flakes []snowfall.Flake) {
	bounds := dst.Bounds()
	for i := range flakes {
		f := &flakes[i]
		r := float64(f.Radius)
		box := image.Rect(
			int(math.Floor(f.X-r)), int(math.Floor(f.Y-r)),
			int(math.Ceil(f.X+r)), int(math.Ceil(f.Y+r)),
		)
		if box.Empty() || !box.Overlaps(bounds) {
			continue
		}
		m := p.mask(box.Dx(), box.Dy())
		p.z.Reset(box.Dx(), box.Dy())
		circle(&p.z, float32(f.X-float64(box.Min.X)), float32(f.Y-float64(box.Min.Y)), float32(r))
		p.z.Draw(m, m.Bounds(), image.Opaque, image.Point{})
		xdraw.DrawMask(dst, box, image.NewUniform(f.Color), image.Point{}, m, image.Point{}, xdraw.Over)
	}
}

// drawFog composites the fog band over the bottom of dst.
func (p *painter) drawFog(dst *image.RGBA) {
	if p.fog == nil {
		p.fog = snowfall.FogGradient(256)
	}
	b := dst.Bounds()
	fr := snowfall.FogRect(float64(b.Dx()), float64(b.Dy()))
	r := image.Rect(
		b.Min.X+int(fr.X), b.Min.Y+int(math.Floor(fr.Y)),
		b.Min.X+int(fr.X+fr.Width), b.Max.Y,
	)
	xdraw.ApproxBiLinear.Scale(dst, r, p.fog, p.fog.Bounds(), xdraw.Over, nil)
}

// circle adds a closed circle path centred at (cx, cy).
func circle(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}
