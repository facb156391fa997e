package cutout

import (
	"context"
	"time"
)

type ProviderKind int

const (
	KindLocal ProviderKind = iota
	KindRemote
)

func (k ProviderKind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "remote"
}

// Options are forwarded to providers that understand them and ignored by the rest.
type Options struct {
	Size            string `json:"size,omitempty"`
	Type            string `json:"type,omitempty"`
	OutputFormat    string `json:"format,omitempty"`
	BackgroundColor string `json:"bg_color,omitempty"`
}

// Request is owned by the caller. Providers must not modify Image.
type Request struct {
	Image   []byte
	Options Options
}

type Result struct {
	Success     bool    `json:"success"`
	Provider    string  `json:"provider"`
	Output      []byte  `json:"-"`
	ContentType string  `json:"content_type"`
	Cost        float64 `json:"cost"`
	Note        string  `json:"note,omitempty"`
}

type Provider interface {
	Name() string
	Kind() ProviderKind
	CostPerImage() float64
	TryRemove(ctx context.Context, req Request) (Result, error)
}

// Attempt describes a single provider invocation, successful or not.
type Attempt struct {
	Provider   string
	Kind       ProviderKind
	StatusCode int
	Cost       float64
	Duration   time.Duration
	Skipped    bool
	Err        error
	At         time.Time
}

func (a Attempt) Succeed() bool {
	return !a.Skipped && a.Err == nil
}
