package tools

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

type ImageType string

const (
	ImageTypePNG     ImageType = "png"
	ImageTypeJPEG    ImageType = "jpeg"
	ImageTypeWEBP    ImageType = "webp"
	ImageTypeGIF     ImageType = "gif"
	ImageTypeTIFF    ImageType = "tiff"
	ImageTypeBMP     ImageType = "bmp"
	ImageTypeUnknown ImageType = "unknown"
)

func (t ImageType) String() string {
	return string(t)
}

var imageTypes = map[string]ImageType{
	"image/png":  ImageTypePNG,
	"image/jpeg": ImageTypeJPEG,
	"image/webp": ImageTypeWEBP,
	"image/gif":  ImageTypeGIF,
	"image/tiff": ImageTypeTIFF,
	"image/bmp":  ImageTypeBMP,
}

func DetectImageType(b []byte) ImageType {
	if t, ok := imageTypes[mimetype.Detect(b).String()]; ok {
		return t
	}
	return ImageTypeUnknown
}

func DetectContentType(b []byte) string {
	return mimetype.Detect(b).String()
}

func IsImage(b []byte) bool {
	return strings.HasPrefix(DetectContentType(b), "image/")
}

// MaxImagePixels bounds width*height of every image DecodeImage accepts, 0 disables the check.
var MaxImagePixels int64 = 40_000_000

var ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")

// CheckPixels reads only the image header. Headers it cannot parse are left to the decoder.
func CheckPixels(b []byte, limit int64) error {
	if limit <= 0 {
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > limit {
		return fmt.Errorf("%w: %dx%d, limit is %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, limit)
	}
	return nil
}

func DecodeImage(b []byte) (image.Image, error) {
	if err := CheckPixels(b, MaxImagePixels); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

var contentTypes = map[imaging.Format]string{
	imaging.PNG:  "image/png",
	imaging.JPEG: "image/jpeg",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// EncodeImage encodes img as format ("png", "jpg", "jpeg", "gif", "tiff", "bmp").
// quality only applies to jpeg, 0 keeps the encoder default.
func EncodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	if format == "" {
		format = "png"
	}
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, "", err
	}
	var opts []imaging.EncodeOption
	if f == imaging.JPEG && quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, opts...); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentTypes[f], nil
}

// Cover scales and centre-crops img so it fills width x height without distortion.
func Cover(img image.Image, width, height int) *image.NRGBA {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}
