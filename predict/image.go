package predict

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

type preparedImage struct {
	data   []byte
	mime   string
	scaleX float64 // original pixels per uploaded pixel, horizontally
	scaleY float64 // original pixels per uploaded pixel, vertically
}

// prepareImage returns the bytes to upload. When maxSide is positive and the
// image is larger, it is fit within maxSide x maxSide and re-encoded as PNG.
func prepareImage(data []byte, maxSide int) (preparedImage, error) {
	mime := http.DetectContentType(data)
	if maxSide <= 0 {
		if len(data) == 0 {
			return preparedImage{}, fmt.Errorf("%w: empty", ErrInvalidImage)
		}
		return preparedImage{data: data, mime: mime, scaleX: 1, scaleY: 1}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return preparedImage{data: data, mime: mime, scaleX: 1, scaleY: 1}, nil
	}

	resized := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return preparedImage{}, fmt.Errorf("encode resized image: %w", err)
	}

	return preparedImage{
		data:   buf.Bytes(),
		mime:   "image/png",
		scaleX: float64(b.Dx()) / float64(resized.Bounds().Dx()),
		scaleY: float64(b.Dy()) / float64(resized.Bounds().Dy()),
	}, nil
}
