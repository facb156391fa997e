package request

import (
	"fmt"
	"mime/multipart"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
)

type CompressPDF struct {
	File       *multipart.FileHeader `form:"file"`
	TargetSize int64                 `form:"target_size"` // bytes, 0 uses the configured budget
	Quality    string                `form:"quality"`     // first level of the ladder
	Method     string                `form:"method"`
	Raw        bool                  `form:"raw"`
}

func (c *CompressPDF) Valid() error {
	if c.File == nil {
		return fmt.Errorf("file is required")
	}
	if c.TargetSize < 0 {
		return fmt.Errorf("invalid target_size: %d, must be non-negative", c.TargetSize)
	}
	if c.Quality != "" {
		if _, err := pdf.ParseQuality(c.Quality); err != nil {
			return err
		}
	}
	if c.Method != "" && c.Method != consts.Ghostscript.String() && c.Method != consts.QPDF.String() {
		return fmt.Errorf("invalid method: %s, must be 'ghostscript' or 'qpdf'", c.Method)
	}
	return nil
}

func (c *CompressPDF) Options() pdf.CompressOptions {
	return pdf.CompressOptions{
		TargetMaxSize: c.TargetSize,
		StartQuality:  pdf.Quality(c.Quality),
		Method:        consts.PDFMethod(c.Method),
	}
}
