package photoroom

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
	Path        = "v1/segment"
	AuthHeader  = "x-api-key"
	DefaultCost = 0.02
)

func Descriptor(apiKey string) cutout.ProviderDescriptor {
	return cutout.ProviderDescriptor{
		Name:         consts.Photoroom.String(),
		Endpoint:     tools.FullURL(consts.PhotoroomBaseURL, Path),
		Credential:   apiKey,
		AuthHeader:   AuthHeader,
		CostPerImage: DefaultCost,
	}
}

func New(desc cutout.ProviderDescriptor, client *http_client.HttpClient) *cutout.RemoteProvider {
	return cutout.NewRemote(desc, &Form{}, client)
}

var sizes = map[string]string{
	"preview": "preview",
	"small":   "preview",
	"medium":  "medium",
	"hd":      "hd",
	"full":    "full",
	"auto":    "",
}

// Form maps size names onto photoroom's and drops "type", which it does not support.
type Form struct{}

func (f *Form) BodyContentType(req cutout.Request) (io.Reader, string, error) {
	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	if err := cutout.WriteImagePart(writer, "image_file", req.Image); err != nil {
		return nil, "", err
	}
	format := req.Options.OutputFormat
	if format == "jpeg" {
		format = "jpg"
	}
	err := cutout.WriteOptionalFields(writer, [][2]string{
		{"size", sizes[req.Options.Size]},
		{"format", format},
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
