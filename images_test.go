package vitrine

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &buf
}

func TestProcessImageDownscalesWideImages(t *testing.T) {
	src := encodePNG(t, 2400, 1200)

	img, data, err := processImage(src, "Photo de Salle.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if img.Width != maxImageWidth {
		t.Errorf("Width = %d, want %d", img.Width, maxImageWidth)
	}
	if img.Height != 600 {
		t.Errorf("Height = %d, want 600 (aspect preserved)", img.Height)
	}
	if img.Filename != "photo-de-salle.jpg" {
		t.Errorf("Filename = %q, want photo-de-salle.jpg", img.Filename)
	}
	if len(data) == 0 {
		t.Error("encoded image should not be empty")
	}
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	src := encodePNG(t, 640, 480)

	img, _, err := processImage(src, "thumb.png")
	if err != nil {
		t.Fatalf("processImage failed: %v", err)
	}
	if img.Width != 640 || img.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480 untouched", img.Width, img.Height)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.png"); err == nil {
		t.Error("garbage input should fail to decode")
	}
}
