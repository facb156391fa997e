package cutout

import (
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/reusedev/cutout-hub/tools"
)

// WriteImagePart adds the image as a file part named field.
func WriteImagePart(writer *multipart.Writer, field string, image []byte) error {
	ext := tools.DetectImageType(image).String()
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", tools.DetectContentType(image))
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="image.%s"`, field, ext))
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(image)
	return err
}

// WriteOptionalFields writes every non-empty value, keyed by form field name.
func WriteOptionalFields(writer *multipart.Writer, fields [][2]string) error {
	for _, kv := range fields {
		if kv[1] == "" {
			continue
		}
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
