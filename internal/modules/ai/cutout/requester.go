package cutout

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/reusedev/cutout-hub/internal/modules/errs"
	"github.com/reusedev/cutout-hub/internal/modules/http_client"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
)

// FormEncoder builds the multipart body one provider expects.
type FormEncoder interface {
	BodyContentType(req Request) (io.Reader, string, error)
}

type RemoteProvider struct {
	desc    ProviderDescriptor
	encoder FormEncoder
	client  *http_client.HttpClient
	parser  *BinaryParser
}

func NewRemote(desc ProviderDescriptor, encoder FormEncoder, client *http_client.HttpClient) *RemoteProvider {
	if client == nil {
		client = http_client.New()
	}
	return &RemoteProvider{
		desc:    desc,
		encoder: encoder,
		client:  client,
		parser:  NewBinaryParser(),
	}
}

func (p *RemoteProvider) Name() string          { return p.desc.Name }
func (p *RemoteProvider) Kind() ProviderKind    { return KindRemote }
func (p *RemoteProvider) CostPerImage() float64 { return p.desc.CostPerImage }

func (p *RemoteProvider) Descriptor() ProviderDescriptor {
	return p.desc
}

func (p *RemoteProvider) TryRemove(ctx context.Context, req Request) (Result, error) {
	ret := Result{Provider: p.desc.Name}
	if !p.desc.Configured() {
		return ret, errs.ForProvider(errs.KindUnconfigured, p.desc.Name, 0, "missing credential")
	}
	body, contentType, err := p.encoder.BodyContentType(req)
	if err != nil {
		return ret, errs.Wrap(errs.KindProviderFailure, err, "build %s request", p.desc.Name)
	}
	httpReq, err := p.client.NewRequest(
		http.MethodPost,
		p.desc.Endpoint,
		http_client.WithHeader(p.desc.AuthHeader, p.desc.Credential),
		http_client.WithHeader("Content-Type", contentType),
		http_client.WithHeader("Accept", "image/*"),
		http_client.WithBody(body),
		http_client.WithContext(ctx),
	)
	if err != nil {
		return ret, errs.Wrap(errs.KindProviderFailure, err, "build %s request", p.desc.Name)
	}
	reqAt := time.Now()
	resp, err := p.client.Do(httpReq)
	respAt := time.Now()
	if err != nil {
		logs.Logger.Err(err).Str("provider", p.desc.Name).Msg("remove background request failed")
		return ret, &errs.Error{Kind: errs.KindProviderFailure, Provider: p.desc.Name, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	logs.Logger.Info().
		Str("provider", p.desc.Name).
		Str("method", httpReq.Method).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", respAt.Sub(reqAt)).
		Msg("remove background request")
	return p.parser.Parse(resp, p.desc)
}
