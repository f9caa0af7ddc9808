package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Quality is the fixed JPEG quality charts are encoded with.
const Quality = jpeg.DefaultQuality

// Encode serializes a composed chart as JPEG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
