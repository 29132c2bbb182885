package camera

import (
	"fmt"
	"image"
)

// decodeYUYV converts a packed YUYV 4:2:2 frame (Y0 U Y1 V) into a planar image.
// stride is the length of one row in bytes, at least width*2.
func decodeYUYV(raw []byte, width, height, stride int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if width%2 != 0 {
		return nil, fmt.Errorf("yuyv width must be even, got %d", width)
	}
	rowBytes := width * 2
	if stride < rowBytes {
		return nil, fmt.Errorf("yuyv stride %d shorter than row of %d bytes", stride, rowBytes)
	}
	expected := stride*(height-1) + rowBytes
	if len(raw) < expected {
		return nil, fmt.Errorf("short yuyv frame: got %d bytes, want %d", len(raw), expected)
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := raw[y*stride : y*stride+rowBytes]
		for x := 0; x < width; x += 2 {
			i := x * 2
			img.Y[y*img.YStride+x] = row[i]
			img.Y[y*img.YStride+x+1] = row[i+2]
			c := y*img.CStride + x/2
			img.Cb[c] = row[i+1]
			img.Cr[c] = row[i+3]
		}
	}
	return img, nil
}
