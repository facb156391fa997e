// Package pdf shrinks documents by stepping an external tool down the quality ladder
// until the output fits the size budget.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/observer"
	"github.com/reusedev/cutout-hub/internal/modules/storage/local"
	rpdf "rsc.io/pdf"
)

var magic = []byte("%PDF-")

type CompressOptions struct {
	// TargetMaxSize in bytes, 0 accepts the first output.
	TargetMaxSize int64
	StartQuality  Quality
	Method        consts.PDFMethod
}

type Attempt struct {
	Method           consts.PDFMethod `json:"method"`
	Quality          Quality          `json:"quality"`
	InputSize        int              `json:"input_size"`
	OutputSize       int              `json:"output_size"`
	ReductionPercent float64          `json:"reduction_percent"`
	Succeeded        bool             `json:"succeeded"`
	WithinBudget     bool             `json:"within_budget"`
}

type Outcome struct {
	// Output is the smallest document any attempt produced.
	Output       []byte    `json:"-"`
	Attempts     []Attempt `json:"attempts"`
	WithinBudget bool      `json:"within_budget"`
	Pages        int       `json:"pages"`
}

type Config struct {
	TempDir  string
	Methods  []Method
	Defaults CompressOptions
}

type Compressor struct {
	observer.Subject

	tempDir  string
	runner   Runner
	methods  map[consts.PDFMethod]Method
	defaults CompressOptions
}

func NewCompressor(cfg Config, runner Runner) *Compressor {
	c := &Compressor{
		tempDir:  cfg.TempDir,
		runner:   runner,
		methods:  make(map[consts.PDFMethod]Method, len(cfg.Methods)),
		defaults: cfg.Defaults,
	}
	if c.tempDir == "" {
		c.tempDir = os.TempDir()
	}
	if c.runner == nil {
		c.runner = ExecRunner{}
	}
	for _, m := range cfg.Methods {
		c.methods[m.Name()] = m
	}
	return c
}

// Compress walks the ladder from StartQuality towards Screen and stops at the first output
// within TargetMaxSize. Running out of levels is not an error, the outcome reports
// WithinBudget false. A tool failure ends the walk immediately.
func (c *Compressor) Compress(ctx context.Context, pdf []byte, opts CompressOptions) (Outcome, error) {
	if !bytes.HasPrefix(pdf, magic) {
		return Outcome{}, errs.New(errs.KindDecodeError, "input is not a pdf")
	}
	opts = c.withDefaults(opts)
	method, ok := c.methods[opts.Method]
	if !ok {
		return Outcome{}, errs.New(errs.KindUnconfigured, "compression method %q not available", opts.Method)
	}
	levels, err := levelsFrom(opts.StartQuality)
	if err != nil {
		return Outcome{}, err
	}
	if !method.Graded() {
		levels = levels[:1]
	}

	outcome := Outcome{Pages: PageCount(pdf)}
	for _, q := range levels {
		out, err := c.attempt(ctx, method, pdf, q)
		if err != nil {
			return outcome, err
		}
		a := Attempt{
			Method:           method.Name(),
			Quality:          q,
			InputSize:        len(pdf),
			OutputSize:       len(out),
			ReductionPercent: reduction(len(pdf), len(out)),
			Succeeded:        true,
			WithinBudget:     opts.TargetMaxSize <= 0 || int64(len(out)) <= opts.TargetMaxSize,
		}
		outcome.Attempts = append(outcome.Attempts, a)
		if outcome.Output == nil || len(out) < len(outcome.Output) {
			outcome.Output = out
		}
		c.Notify(consts.EventPDFAttempt, a)
		logs.Logger.Info().
			Str("method", method.Name().String()).
			Str("quality", string(q)).
			Int("input_size", a.InputSize).
			Int("output_size", a.OutputSize).
			Bool("within_budget", a.WithinBudget).
			Msg("pdf compression attempt")
		if a.WithinBudget {
			outcome.WithinBudget = true
			break
		}
	}
	return outcome, nil
}

func (c *Compressor) withDefaults(opts CompressOptions) CompressOptions {
	if opts.TargetMaxSize == 0 {
		opts.TargetMaxSize = c.defaults.TargetMaxSize
	}
	if opts.StartQuality == "" {
		opts.StartQuality = c.defaults.StartQuality
	}
	if opts.StartQuality == "" {
		opts.StartQuality = Printer
	}
	if opts.Method == "" {
		opts.Method = c.defaults.Method
	}
	if opts.Method == "" {
		opts.Method = consts.Ghostscript
	}
	return opts
}

func (c *Compressor) attempt(ctx context.Context, m Method, pdf []byte, q Quality) ([]byte, error) {
	in := local.TempPath(c.tempDir, "pdfin", ".pdf")
	out := local.TempPath(c.tempDir, "pdfout", ".pdf")
	defer c.cleanup(in)
	defer c.cleanup(out)

	if err := local.SaveFile(bytes.NewReader(pdf), in); err != nil {
		return nil, errs.Wrap(errs.KindToolInvocationFailure, err, "write temp input")
	}
	name, args := m.Command(in, out, q)
	if output, err := c.runner.Run(ctx, name, args...); err != nil {
		return nil, errs.Wrap(errs.KindToolInvocationFailure, err, "%s at %s: %s", m.Name(), q, tail(output))
	}
	ret, err := os.ReadFile(out)
	if err != nil {
		return nil, errs.Wrap(errs.KindToolInvocationFailure, err, "%s at %s produced no output", m.Name(), q)
	}
	return ret, nil
}

func (c *Compressor) cleanup(path string) {
	if err := local.DeleteFile(path); err != nil {
		logs.Logger.Warn().Err(err).Str("path", path).Msg("remove temp file failed")
	}
}

func levelsFrom(start Quality) ([]Quality, error) {
	for i, q := range Ladder {
		if q == start {
			return Ladder[i:], nil
		}
	}
	return nil, fmt.Errorf("unknown quality %q", start)
}

func reduction(in, out int) float64 {
	if in == 0 {
		return 0
	}
	return float64(in-out) / float64(in) * 100
}

func tail(output []byte) string {
	const limit = 200
	output = bytes.TrimSpace(output)
	if len(output) > limit {
		output = output[len(output)-limit:]
	}
	return string(output)
}

// PageCount returns 0 when the document cannot be parsed.
func PageCount(pdf []byte) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	r, err := rpdf.NewReader(bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
