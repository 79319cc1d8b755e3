package capture

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phanxgames/snowfall"
)

func TestPainterDrawsFlake(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	var p painter
	p.drawFlakes(dst, []snowfall.Flake{{
		X: 10, Y: 10, Radius: 4,
		Color: snowfall.RGB{R: 255, G: 255, B: 255},
	}})

	center := dst.RGBAAt(10, 10)
	assert.Equal(t, uint8(255), center.R)
	assert.Equal(t, uint8(255), center.A)
	assert.Zero(t, dst.RGBAAt(0, 0).A)
	assert.Zero(t, dst.RGBAAt(10, 2).A)
}

func TestPainterClipsEdges(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var p painter
	assert.NotPanics(t, func() {
		p.drawFlakes(dst, []snowfall.Flake{
			{X: -2, Y: 5, Radius: 4, Color: snowfall.RGB{R: 255, G: 255, B: 255}},
			{X: 9, Y: 9, Radius: 5, Color: snowfall.RGB{R: 255, G: 255, B: 255}},
			{X: 50, Y: -50, Radius: 3, Color: snowfall.RGB{R: 255, G: 255, B: 255}},
		})
	})
	assert.NotZero(t, dst.RGBAAt(0, 5).A)
	assert.NotZero(t, dst.RGBAAt(9, 9).A)
}

func TestPainterFogCoversBottom(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 100))
	var p painter
	p.drawFog(dst)

	assert.Zero(t, dst.RGBAAt(20, 10).A)
	assert.NotZero(t, dst.RGBAAt(20, 99).A)
}
