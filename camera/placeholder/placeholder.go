package placeholder

import (
	"bytes"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"
)

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = truetype.Parse(goregular.TTF)
	})
	return font, fontErr
}

// Create renders text centered on a solid background. With timestamp set the
// current time is drawn in the bottom right corner.
func Create(
	width, height int,
	backgroundColor, foregroundColor color.Color,
	text string,
	timestamp bool,
) (image.Image, error) {
	f, err := loadFont()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	// 1080 lines -> 120pt
	size := max(float64(height)/9, 8)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))

	dc.SetColor(foregroundColor)
	dc.DrawStringAnchored(text, float64(width)/2, float64(height)/2, 0.5, 0.5)

	if timestamp {
		margin := float64(height) / 20
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: max(size/4, 6)}))
		dc.DrawStringAnchored(time.Now().Format(time.DateTime), float64(width)-margin, float64(height)-margin, 1, 0)
	}

	return dc.Image(), nil
}

// JPEG renders a white-on-black placeholder with a timestamp and encodes it
// at quality.
func JPEG(width, height int, text string, quality int) ([]byte, error) {
	img, err := Create(
		width, height,
		color.RGBA{A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
		text,
		true,
	)
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(nil)
	err = jpeg.Encode(buffer, img, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
