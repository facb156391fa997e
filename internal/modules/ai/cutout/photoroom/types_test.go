package photoroom

import (
	"mime"
	"mime/multipart"
	"testing"

	"github.com/reusedev/cutout-hub/internal/modules/ai/cutout"
	"github.com/stretchr/testify/require"
)

func TestForm(t *testing.T) {
	body, contentType, err := (&Form{}).BodyContentType(cutout.Request{
		Image:   []byte("\xff\xd8\xff\xe0"),
		Options: cutout.Options{Size: "small", Type: "car", OutputFormat: "jpeg"},
	})
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	require.Len(t, form.File["image_file"], 1)
	require.Equal(t, []string{"preview"}, form.Value["size"])
	require.Equal(t, []string{"jpg"}, form.Value["format"])
	require.NotContains(t, form.Value, "type")
	require.NotContains(t, form.Value, "bg_color")
}

func TestDescriptor(t *testing.T) {
	d := Descriptor("")
	require.Equal(t, "https://sdk.photoroom.com/v1/segment", d.Endpoint)
	require.Equal(t, DefaultCost, d.CostPerImage)
}
