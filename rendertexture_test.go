package snowfall

import "testing"

func TestNewRenderTextureDimensions(t *testing.T) {
	rt := NewRenderTexture(128, 64)
	defer rt.Dispose()

	if rt.Width() != 128 {
		t.Errorf("Width = %d, want 128", rt.Width())
	}
	if rt.Height() != 64 {
		t.Errorf("Height = %d, want 64", rt.Height())
	}
	if rt.Image() == nil {
		t.Error("Image() should not be nil")
	}
}

func TestRenderTextureResize(t *testing.T) {
	rt := NewRenderTexture(32, 32)
	defer rt.Dispose()

	old := rt.Image()
	rt.Resize(32, 32)
	if rt.Image() != old {
		t.Error("same-size Resize should keep the image")
	}
	rt.Resize(64, 16)
	if rt.Width() != 64 || rt.Height() != 16 {
		t.Errorf("size = %dx%d, want 64x16", rt.Width(), rt.Height())
	}
	if b := rt.Image().Bounds(); b.Dx() != 64 || b.Dy() != 16 {
		t.Errorf("image bounds = %v", b)
	}
}

func TestRenderTextureDisposeTwice(t *testing.T) {
	rt := NewRenderTexture(8, 8)
	rt.Dispose()
	rt.Dispose()
	if rt.Image() != nil {
		t.Error("Image should be nil after Dispose")
	}
}
