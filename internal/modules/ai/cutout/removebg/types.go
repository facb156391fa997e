package removebg

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/reusedev/cutout-hub/internal/consts"
	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/reusedev/cutout-hub/internal/modules/http_client"
	"github.com/reusedev/cutout-hub/tools"
)

const (
	Path        = "v1.0/removebg"
	AuthHeader  = "X-Api-Key"
	DefaultCost = 0.20
)

func Descriptor(apiKey string) cutout.ProviderDescriptor {
	return cutout.ProviderDescriptor{
		Name:         consts.RemoveBG.String(),
		Endpoint:     tools.FullURL(consts.RemoveBGBaseURL, Path),
		Credential:   apiKey,
		AuthHeader:   AuthHeader,
		CostPerImage: DefaultCost,
	}
}

func New(desc cutout.ProviderDescriptor, client *http_client.HttpClient) *cutout.RemoteProvider {
	return cutout.NewRemote(desc, &Form{}, client)
}

// Form supports every option: size, type, format and bg_color.
type Form struct{}

func (f *Form) BodyContentType(req cutout.Request) (io.Reader, string, error) {
	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	if err := cutout.WriteImagePart(writer, "image_file", req.Image); err != nil {
		return nil, "", err
	}
	size := req.Options.Size
	if size == "" {
		size = "auto"
	}
	err := cutout.WriteOptionalFields(writer, [][2]string{
		{"size", size},
		{"type", req.Options.Type},
		{"format", req.Options.OutputFormat},
		{"bg_color", req.Options.BackgroundColor},
	})
	if err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return payload, writer.FormDataContentType(), nil
}
