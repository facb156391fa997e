package cutout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/tools"
)

const maxErrorMessage = 300

// BinaryParser turns a provider response carrying raw image bytes into a Result.
type BinaryParser struct {
	// ErrorBodyTimeout bounds reading the body of a failed response, some providers keep it open.
	ErrorBodyTimeout time.Duration
}

func NewBinaryParser() *BinaryParser {
	return &BinaryParser{ErrorBodyTimeout: 30 * time.Second}
}

func (p *BinaryParser) Parse(resp *http.Response, desc ProviderDescriptor) (Result, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := p.readWithTimeout(resp.Body)
		err := ClassifyStatus(desc.Name, resp.StatusCode, body)
		logs.Logger.Warn().
			Str("provider", desc.Name).
			Int("status_code", resp.StatusCode).
			Str("body", truncate(string(body))).
			Msg("remove background resp error")
		return Result{Provider: desc.Name}, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Provider: desc.Name}, errs.Wrap(errs.KindProviderFailure, err, "read %s response", desc.Name)
	}
	if !tools.IsImage(body) {
		return Result{Provider: desc.Name}, errs.ForProvider(errs.KindProviderFailure, desc.Name, resp.StatusCode,
			fmt.Sprintf("expected image, got %s", tools.DetectContentType(body)))
	}
	return Result{
		Success:     true,
		Provider:    desc.Name,
		Output:      body,
		ContentType: tools.DetectContentType(body),
		Cost:        desc.CostPerImage,
	}, nil
}

func (p *BinaryParser) readWithTimeout(r io.Reader) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), p.ErrorBodyTimeout)
	defer cancel()
	type result struct {
		data []byte
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(r, 64<<10))
		resultCh <- result{data: data, err: err}
	}()
	select {
	case res := <-resultCh:
		return res.data
	case <-ctx.Done():
		return nil
	}
}

// ClassifyStatus maps a failed provider status code to the error taxonomy.
func ClassifyStatus(provider string, statusCode int, body []byte) error {
	msg := providerMessage(body)
	switch statusCode {
	case http.StatusPaymentRequired:
		if msg == "" {
			msg = "credits exhausted"
		}
		return errs.ForProvider(errs.KindPaymentRequired, provider, statusCode, msg)
	case http.StatusTooManyRequests:
		if msg == "" {
			msg = "rate limited"
		}
		return errs.ForProvider(errs.KindRateLimited, provider, statusCode, msg)
	default:
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return errs.ForProvider(errs.KindProviderFailure, provider, statusCode, msg)
	}
}

var messagePaths = [][]interface{}{
	{"errors", 0, "title"},
	{"error", "message"},
	{"error"},
	{"detail"},
	{"message"},
}

func providerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	for _, path := range messagePaths {
		if v := jsoniter.Get(body, path...); v.ValueType() == jsoniter.StringValue {
			return truncate(v.ToString())
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) > maxErrorMessage {
		return s[:maxErrorMessage]
	}
	return s
}
