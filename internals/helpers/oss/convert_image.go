package oss

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	MaxImageSide = 1600
	WebPQuality  = 80
)

// NormalizeImage mengubah JPEG/PNG menjadi WebP (sisi terpanjang maks 1600px).
// Tipe lain dikembalikan apa adanya.
func NormalizeImage(in StoreInput) (StoreInput, error) {
	ct := strings.ToLower(in.ContentType)
	if ct != "image/jpeg" && ct != "image/png" {
		return in, nil
	}

	img, err := imaging.Decode(bytes.NewReader(in.Data), imaging.AutoOrientation(true))
	if err != nil {
		return in, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > MaxImageSide || b.Dy() > MaxImageSide {
		img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
		return in, fmt.Errorf("encode webp: %w", err)
	}

	out := in
	out.Data = buf.Bytes()
	out.ContentType = "image/webp"
	out.Filename = strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename)) + ".webp"
	return out, nil
}
