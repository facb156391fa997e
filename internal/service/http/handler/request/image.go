package request

import (
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
)

var (
	hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	formats  = map[string]bool{"": true, "png": true, "jpg": true, "jpeg": true}
)

type RemoveBackground struct {
	Image    *multipart.FileHeader `form:"image"`
	Provider string                `form:"provider"` // call only this provider, no fallback
	Order    string                `form:"order"`    // comma separated provider names
	Size     string                `form:"size"`
	Type     string                `form:"type"`
	Format   string                `form:"format"`
	BgColor  string                `form:"bg_color"`
	Raw      bool                  `form:"raw"` // reply with the image bytes instead of json
}

func (r *RemoveBackground) Valid() error {
	if r.Image == nil {
		return fmt.Errorf("image is required")
	}
	if r.Provider != "" && r.Order != "" {
		return fmt.Errorf("provider and order are mutually exclusive")
	}
	return validOptions(r.Format, r.BgColor)
}

func (r *RemoveBackground) Options() cutout.Options {
	return cutout.Options{
		Size:            r.Size,
		Type:            r.Type,
		OutputFormat:    strings.ToLower(r.Format),
		BackgroundColor: r.BgColor,
	}
}

func (r *RemoveBackground) OrderList() []string {
	return SplitOrder(r.Order)
}

type BatchRemove struct {
	Images      []*multipart.FileHeader `form:"images"`
	Concurrency int                     `form:"concurrency"`
	Order       string                  `form:"order"`
	Format      string                  `form:"format"`
	BgColor     string                  `form:"bg_color"`
}

const MaxBatchImages = 50

func (b *BatchRemove) Valid() error {
	if len(b.Images) == 0 {
		return fmt.Errorf("images is required")
	}
	if len(b.Images) > MaxBatchImages {
		return fmt.Errorf("at most %d images per batch", MaxBatchImages)
	}
	if b.Concurrency < 0 || b.Concurrency > 10 {
		return fmt.Errorf("invalid concurrency: %d, must be between 1 and 10, or 0 for the default", b.Concurrency)
	}
	return validOptions(b.Format, b.BgColor)
}

func (b *BatchRemove) Options() cutout.Options {
	return cutout.Options{OutputFormat: strings.ToLower(b.Format), BackgroundColor: b.BgColor}
}

type ReplaceBackground struct {
	Foreground    *multipart.FileHeader `form:"foreground"`
	Background    *multipart.FileHeader `form:"background"`
	BackgroundURL string                `form:"background_url"`
	Order         string                `form:"order"`
	Format        string                `form:"format"`
	Quality       int                   `form:"quality"`
	Raw           bool                  `form:"raw"`
}

func (r *ReplaceBackground) Valid() error {
	if r.Foreground == nil {
		return fmt.Errorf("foreground is required")
	}
	if r.Background == nil && r.BackgroundURL == "" {
		return fmt.Errorf("must fill background or background_url")
	}
	if r.Quality < 0 || r.Quality > 100 {
		return fmt.Errorf("invalid quality: %d, must be between 1 and 100, or 0 for the default", r.Quality)
	}
	return validOptions(r.Format, "")
}

func validOptions(format, bgColor string) error {
	if !formats[strings.ToLower(format)] {
		return fmt.Errorf("invalid format: %s, must be 'png' or 'jpg'", format)
	}
	if bgColor != "" && !hexColor.MatchString(bgColor) {
		return fmt.Errorf("invalid bg_color: %s", bgColor)
	}
	return nil
}

func SplitOrder(s string) []string {
	var ret []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			ret = append(ret, name)
		}
	}
	return ret
}
