package remover

import (
	"context"
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/tools"
)

type CompositeOptions struct {
	// Format of the output, png when empty.
	Format  string
	Quality int
	Plan    Plan
}

type CompositeResult struct {
	Output      []byte  `json:"-"`
	ContentType string  `json:"content_type"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Provider    string  `json:"provider"`
	Cost        float64 `json:"cost"`
}

type Compositor struct {
	remover Remover
}

func NewCompositor(remover Remover) *Compositor {
	return &Compositor{remover: remover}
}

// CompositeOntoBackground cuts out fg and lays it over bg. The output has fg's dimensions,
// bg is scaled and centre-cropped to cover them when they differ.
func (c *Compositor) CompositeOntoBackground(ctx context.Context, fg cutout.Request, bg []byte, opts CompositeOptions) (CompositeResult, error) {
	bgImg, err := tools.DecodeImage(bg)
	if err != nil {
		kind := errs.KindDecodeError
		if errors.Is(err, tools.ErrTooManyPixels) {
			kind = errs.KindSizeExceeded
		}
		return CompositeResult{}, errs.Wrap(kind, err, "background")
	}

	// the cutout must keep its alpha channel
	fg.Options.OutputFormat = "png"
	fg.Options.BackgroundColor = ""
	res, err := c.remover.AutoRemove(ctx, fg, opts.Plan)
	if err != nil {
		return CompositeResult{Provider: res.Provider}, err
	}
	fgImg, err := tools.DecodeImage(res.Output)
	if err != nil {
		return CompositeResult{Provider: res.Provider, Cost: res.Cost}, errs.Wrap(errs.KindDecodeError, err, "cutout from %s", res.Provider)
	}

	w, h := fgImg.Bounds().Dx(), fgImg.Bounds().Dy()
	var canvas *image.NRGBA
	if bgImg.Bounds().Dx() != w || bgImg.Bounds().Dy() != h {
		canvas = tools.Cover(bgImg, w, h)
	} else {
		canvas = imaging.Clone(bgImg)
	}
	canvas = imaging.Overlay(canvas, fgImg, image.Pt(0, 0), 1.0)

	out, contentType, err := tools.EncodeImage(canvas, opts.Format, opts.Quality)
	if err != nil {
		return CompositeResult{Provider: res.Provider, Cost: res.Cost}, errs.Wrap(errs.KindCompositeError, err, "encode %s", opts.Format)
	}
	logs.Logger.Info().
		Str("provider", res.Provider).
		Int("width", w).
		Int("height", h).
		Str("format", contentType).
		Msg("background replaced")
	return CompositeResult{
		Output:      out,
		ContentType: contentType,
		Width:       w,
		Height:      h,
		Provider:    res.Provider,
		Cost:        res.Cost,
	}, nil
}
