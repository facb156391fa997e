package pdf

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 1000)...)

// fakeRunner writes an output of sizes[quality] bytes, or fails on the listed qualities.
type fakeRunner struct {
	t      *testing.T
	sizes  map[Quality]int
	failOn map[Quality]bool
	calls  []Quality
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	q := Default
	out := args[len(args)-1]
	in := args[len(args)-2]
	for _, a := range args {
		if strings.HasPrefix(a, "-dPDFSETTINGS=/") {
			q = Quality(strings.TrimPrefix(a, "-dPDFSETTINGS=/"))
		}
		if strings.HasPrefix(a, "-sOutputFile=") {
			out = strings.TrimPrefix(a, "-sOutputFile=")
			in = args[len(args)-1]
		}
	}
	f.calls = append(f.calls, q)
	_, err := os.Stat(in)
	assert.NoError(f.t, err, "input written before the tool runs")
	if f.failOn[q] {
		return []byte("Error: /undefined in /BXlevel"), errors.New("exit status 1")
	}
	size, ok := f.sizes[q]
	if !ok {
		size = 500
	}
	return nil, os.WriteFile(out, bytes.Repeat([]byte("y"), size), 0644)
}

func newTestCompressor(t *testing.T, runner Runner) (*Compressor, string) {
	dir := t.TempDir()
	return NewCompressor(Config{
		TempDir: dir,
		Methods: []Method{Ghostscript{Path: "gs"}, QPDF{Path: "qpdf"}},
	}, runner), dir
}

func requireEmptyDir(t *testing.T, dir string) {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCompressOverBudget(t *testing.T) {
	r := &fakeRunner{t: t, sizes: map[Quality]int{Printer: 900, Default: 800, Ebook: 700, Screen: 600}}
	c, dir := newTestCompressor(t, r)

	out, err := c.Compress(context.Background(), samplePDF, CompressOptions{TargetMaxSize: 100, StartQuality: Printer})
	require.NoError(t, err)
	require.False(t, out.WithinBudget)
	require.Equal(t, []Quality{Printer, Default, Ebook, Screen}, r.calls)
	require.Len(t, out.Attempts, 4)
	require.Len(t, out.Output, 600)
	for _, a := range out.Attempts {
		require.True(t, a.Succeeded)
		require.False(t, a.WithinBudget)
		require.Equal(t, len(samplePDF), a.InputSize)
	}
	requireEmptyDir(t, dir)
}

func TestCompressStopsWithinBudget(t *testing.T) {
	r := &fakeRunner{t: t, sizes: map[Quality]int{Prepress: 1200, Printer: 900, Default: 300}}
	c, dir := newTestCompressor(t, r)

	out, err := c.Compress(context.Background(), samplePDF, CompressOptions{TargetMaxSize: 400, StartQuality: Prepress})
	require.NoError(t, err)
	require.True(t, out.WithinBudget)
	require.Equal(t, []Quality{Prepress, Printer, Default}, r.calls)
	require.Len(t, out.Output, 300)
	last := out.Attempts[len(out.Attempts)-1]
	require.True(t, last.WithinBudget)
	require.InDelta(t, 70.3, last.ReductionPercent, 0.1)
	requireEmptyDir(t, dir)
}

func TestCompressNoTargetAcceptsFirst(t *testing.T) {
	r := &fakeRunner{t: t}
	c, _ := newTestCompressor(t, r)
	out, err := c.Compress(context.Background(), samplePDF, CompressOptions{})
	require.NoError(t, err)
	require.True(t, out.WithinBudget)
	require.Equal(t, []Quality{Printer}, r.calls)
}

func TestCompressToolFailureIsFatal(t *testing.T) {
	r := &fakeRunner{t: t, sizes: map[Quality]int{Printer: 900}, failOn: map[Quality]bool{Default: true}}
	c, dir := newTestCompressor(t, r)

	out, err := c.Compress(context.Background(), samplePDF, CompressOptions{TargetMaxSize: 100})
	require.True(t, errors.Is(err, errs.ToolInvocationFailure))
	require.Contains(t, err.Error(), "BXlevel")
	require.Equal(t, []Quality{Printer, Default}, r.calls)
	require.Len(t, out.Attempts, 1)
	requireEmptyDir(t, dir)
}

func TestCompressQPDFSingleAttempt(t *testing.T) {
	r := &fakeRunner{t: t}
	c, dir := newTestCompressor(t, r)
	out, err := c.Compress(context.Background(), samplePDF, CompressOptions{TargetMaxSize: 10, Method: consts.QPDF})
	require.NoError(t, err)
	require.False(t, out.WithinBudget)
	require.Len(t, r.calls, 1)
	require.Equal(t, consts.QPDF, out.Attempts[0].Method)
	requireEmptyDir(t, dir)
}

func TestCompressRejectsInput(t *testing.T) {
	r := &fakeRunner{t: t}
	c, _ := newTestCompressor(t, r)

	_, err := c.Compress(context.Background(), []byte("hello"), CompressOptions{})
	require.True(t, errors.Is(err, errs.DecodeError))

	_, err = c.Compress(context.Background(), samplePDF, CompressOptions{StartQuality: "best"})
	require.Error(t, err)

	_, err = c.Compress(context.Background(), samplePDF, CompressOptions{Method: "mutool"})
	require.True(t, errors.Is(err, errs.Unconfigured))
	require.Empty(t, r.calls)
}

func TestGhostscriptCommand(t *testing.T) {
	name, args := Ghostscript{Path: "/usr/bin/gs"}.Command("in.pdf", "out.pdf", Ebook)
	require.Equal(t, "/usr/bin/gs", name)
	require.Contains(t, args, "-dPDFSETTINGS=/ebook")
	require.Contains(t, args, "-sOutputFile=out.pdf")
	require.Equal(t, "in.pdf", args[len(args)-1])
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("screen")
	require.NoError(t, err)
	require.Equal(t, Screen, q)
	_, err = ParseQuality("low")
	require.Error(t, err)
}

func TestPageCountGarbage(t *testing.T) {
	require.Equal(t, 0, PageCount(samplePDF))
	require.Equal(t, 0, PageCount(nil))
}
