package codec

import (
	"fmt"
	"image"
)

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// yuvToRGB is the integer BT.601 transform, studio range input:
// C = Y-16, D = U-128, E = V-128, rounded by +128 then >>8.
func yuvToRGB(y, u, v int) (uint8, uint8, uint8) {
	c := y - 16
	d := u - 128
	e := v - 128

	r := (298*c + 409*e + 128) >> 8
	g := (298*c - 100*d - 208*e + 128) >> 8
	b := (298*c + 516*d + 128) >> 8

	return clamp(r), clamp(g), clamp(b)
}

// YUYVToRGB converts packed Y0 U Y1 V data into an RGB image of exactly
// width*height*3 bytes. stride is the source row length in bytes.
func YUYVToRGB(src []byte, width, height, stride int) (*RGB, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrEncodeFailed, width, height)
	}

	if width > len(src)/2 {
		return nil, fmt.Errorf("%w: YUYV frame has %d bytes, too short for width %d", ErrEncodeFailed, len(src), width)
	}

	rowBytes := (width + 1) / 2 * 4
	if stride < rowBytes {
		stride = rowBytes
	}
	if len(src) < rowBytes || height-1 > (len(src)-rowBytes)/stride {
		return nil, fmt.Errorf("%w: YUYV frame has %d bytes, too short for %dx%d stride %d", ErrEncodeFailed, len(src), width, height, stride)
	}

	img := NewRGB(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		in := src[y*stride:]
		out := img.Pix[y*img.Stride : (y+1)*img.Stride]

		for x := 0; x < width; x += 2 {
			p := in[x*2 : x*2+4]
			u, v := int(p[1]), int(p[3])

			o := x * 3
			out[o], out[o+1], out[o+2] = yuvToRGB(int(p[0]), u, v)

			if x+1 < width {
				out[o+3], out[o+4], out[o+5] = yuvToRGB(int(p[2]), u, v)
			}
		}
	}

	return img, nil
}
