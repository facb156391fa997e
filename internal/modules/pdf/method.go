package pdf

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/reusedev/cutout-hub/internal/consts"
)

type Quality string

const (
	Prepress Quality = "prepress"
	Printer  Quality = "printer"
	Default  Quality = "default"
	Ebook    Quality = "ebook"
	Screen   Quality = "screen"
)

// Ladder runs from the largest, best looking output to the smallest.
var Ladder = []Quality{Prepress, Printer, Default, Ebook, Screen}

func ParseQuality(s string) (Quality, error) {
	for _, q := range Ladder {
		if string(q) == s {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown quality %q", s)
}

// Method is an external tool that rewrites in into out.
type Method interface {
	Name() consts.PDFMethod
	// Graded methods honour the quality level, the rest produce the same output at every level.
	Graded() bool
	Command(in, out string, q Quality) (string, []string)
}

type Ghostscript struct {
	Path string
}

func (g Ghostscript) Name() consts.PDFMethod { return consts.Ghostscript }
func (g Ghostscript) Graded() bool           { return true }

func (g Ghostscript) Command(in, out string, q Quality) (string, []string) {
	return g.Path, []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + string(q),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + out,
		in,
	}
}

type QPDF struct {
	Path string
}

func (q QPDF) Name() consts.PDFMethod { return consts.QPDF }
func (q QPDF) Graded() bool           { return false }

func (q QPDF) Command(in, out string, _ Quality) (string, []string) {
	return q.Path, []string{
		"--object-streams=generate",
		"--compress-streams=y",
		"--recompress-flate",
		"--compression-level=9",
		in,
		out,
	}
}

// Runner starts an external process and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
