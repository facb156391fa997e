package response

import (
	"encoding/base64"

	"github.com/reusedev/cutout-hub/internal/modules/pdf"
)

type Compression struct {
	InputSize    int           `json:"input_size"`
	OutputSize   int           `json:"output_size"`
	Pages        int           `json:"pages"`
	WithinBudget bool          `json:"within_budget"`
	Attempts     []pdf.Attempt `json:"attempts"`
	Base64       string        `json:"base64,omitempty"`
	URL          string        `json:"url,omitempty"`
}

func NewCompression(inputSize int, o pdf.Outcome) Compression {
	return Compression{
		InputSize:    inputSize,
		OutputSize:   len(o.Output),
		Pages:        o.Pages,
		WithinBudget: o.WithinBudget,
		Attempts:     o.Attempts,
		Base64:       base64.StdEncoding.EncodeToString(o.Output),
	}
}
