package local

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/tools"
)

const (
	minBackgroundRatio = 0.05
	maxBackgroundRatio = 0.98
)

// Model segments the foreground by flooding the background in from the image border.
// Pixels connected to the border whose colour stays within tolerance of the average
// border colour become transparent. It needs no weights and never touches the network.
type Model struct {
	name      string
	tolerance uint8
}

func New(name string) (*Model, error) {
	p, ok := presets[consts.LocalModel(name)]
	if !ok {
		return nil, errs.ForProvider(errs.KindUnknownProvider, name, 0, "not a local model")
	}
	return &Model{name: name, tolerance: p.tolerance}, nil
}

func (m *Model) Name() string              { return m.name }
func (m *Model) Kind() cutout.ProviderKind { return cutout.KindLocal }
func (m *Model) CostPerImage() float64     { return 0 }
func (m *Model) Tolerance() uint8          { return m.tolerance }
func (m *Model) String() string            { return fmt.Sprintf("local(%s)", m.name) }

func (m *Model) TryRemove(ctx context.Context, req cutout.Request) (cutout.Result, error) {
	ret := cutout.Result{Provider: m.name}
	img, err := tools.DecodeImage(req.Image)
	if err != nil {
		return ret, decodeFailure(m.name, "decode input", err)
	}
	if err := ctx.Err(); err != nil {
		return ret, &errs.Error{Kind: errs.KindProviderFailure, Provider: m.name, Message: "canceled", Err: err}
	}
	src := imaging.Clone(img)
	mask, ratio := floodBackground(src, m.tolerance)
	if ratio < minBackgroundRatio || ratio > maxBackgroundRatio {
		return ret, errs.ForProvider(errs.KindProviderFailure, m.name, 0,
			fmt.Sprintf("no separable background (%.2f of pixels matched)", ratio))
	}
	if err := ctx.Err(); err != nil {
		return ret, &errs.Error{Kind: errs.KindProviderFailure, Provider: m.name, Message: "canceled", Err: err}
	}
	out, contentType, err := render(src, mask, req.Options)
	if err != nil {
		return ret, &errs.Error{Kind: errs.KindProviderFailure, Provider: m.name, Message: "encode output", Err: err}
	}
	ret.Success = true
	ret.Output = out
	ret.ContentType = contentType
	return ret, nil
}

// floodBackground marks background pixels in mask and returns the share of pixels marked.
func floodBackground(img *image.NRGBA, tolerance uint8) ([]bool, float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, 0
	}
	ref := borderAverage(img)
	mask := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if mask[i] || !near(img, x, y, ref, tolerance) {
			return
		}
		mask[i] = true
		queue = append(queue, i)
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}
	count := 0
	for _, bg := range mask {
		if bg {
			count++
		}
	}
	return mask, float64(count) / float64(len(mask))
}

func borderAverage(img *image.NRGBA) [3]int {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var sum [3]int
	n := 0
	add := func(x, y int) {
		c := img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
		sum[0] += int(c.R)
		sum[1] += int(c.G)
		sum[2] += int(c.B)
		n++
	}
	for x := 0; x < w; x++ {
		add(x, 0)
		add(x, h-1)
	}
	for y := 1; y < h-1; y++ {
		add(0, y)
		add(w-1, y)
	}
	return [3]int{sum[0] / n, sum[1] / n, sum[2] / n}
}

func near(img *image.NRGBA, x, y int, ref [3]int, tolerance uint8) bool {
	c := img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return absDiff(int(c.R), ref[0]) <= int(tolerance) &&
		absDiff(int(c.G), ref[1]) <= int(tolerance) &&
		absDiff(int(c.B), ref[2]) <= int(tolerance)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func render(img *image.NRGBA, mask []bool, opts cutout.Options) ([]byte, string, error) {
	format := strings.ToLower(opts.OutputFormat)
	var fill *color.NRGBA
	if opts.BackgroundColor != "" {
		c, err := ParseHexColor(opts.BackgroundColor)
		if err != nil {
			return nil, "", err
		}
		fill = &c
	} else if format == "jpg" || format == "jpeg" {
		fill = &color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	w := img.Rect.Dx()
	for i, bg := range mask {
		if !bg {
			continue
		}
		x, y := img.Rect.Min.X+i%w, img.Rect.Min.Y+i/w
		if fill != nil {
			img.SetNRGBA(x, y, *fill)
		} else {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}
	return tools.EncodeImage(img, format, 0)
}

// ParseHexColor accepts "rgb", "rrggbb" and "rrggbbaa", with or without a leading '#'.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
		fallthrough
	case 6:
		s += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
