package clipdrop

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
	Path        = "remove-background/v1"
	AuthHeader  = "x-api-key"
	DefaultCost = 0.10
)

func Descriptor(apiKey string) cutout.ProviderDescriptor {
	return cutout.ProviderDescriptor{
		Name:         consts.Clipdrop.String(),
		Endpoint:     tools.FullURL(consts.ClipdropBaseURL, Path),
		Credential:   apiKey,
		AuthHeader:   AuthHeader,
		CostPerImage: DefaultCost,
	}
}

func New(desc cutout.ProviderDescriptor, client *http_client.HttpClient) *cutout.RemoteProvider {
	return cutout.NewRemote(desc, &Form{}, client)
}

// Form only sends the image, clipdrop always answers with a transparent png.
type Form struct{}

func (f *Form) BodyContentType(req cutout.Request) (io.Reader, string, error) {
	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	if err := cutout.WriteImagePart(writer, "image_file", req.Image); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return payload, writer.FormDataContentType(), nil
}
