package local

import (
	"errors"

	"github.com/disintegration/imaging"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/tools"
)

// LuminanceCutoff is the luma at and above which BasicTransparency clears a pixel.
const LuminanceCutoff = 240

// BasicTransparency makes near-white pixels fully transparent and leaves the rest untouched.
// The output is always png and depends only on the input bytes.
func BasicTransparency(b []byte) ([]byte, error) {
	img, err := tools.DecodeImage(b)
	if err != nil {
		return nil, decodeFailure("", "basic transparency", err)
	}
	dst := imaging.Clone(img)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		r, g, bl := int(dst.Pix[i]), int(dst.Pix[i+1]), int(dst.Pix[i+2])
		if (299*r+587*g+114*bl)/1000 >= LuminanceCutoff {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0, 0, 0, 0
		}
	}
	out, _, err := tools.EncodeImage(dst, "png", 0)
	if err != nil {
		return nil, errs.Wrap(errs.KindCompositeError, err, "basic transparency")
	}
	return out, nil
}

// decodeFailure reports images over the pixel limit as SizeExceeded and anything else as DecodeError.
func decodeFailure(provider, message string, err error) *errs.Error {
	kind := errs.KindDecodeError
	if errors.Is(err, tools.ErrTooManyPixels) {
		kind = errs.KindSizeExceeded
	}
	return &errs.Error{Kind: kind, Provider: provider, Message: message, Err: err}
}
