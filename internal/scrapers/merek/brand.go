package merek

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// BrandUpload is the brand stage: the label image and how the mark is described.
type BrandUpload struct {
	ApplicationNo string
	// File is the new label image, it may be empty when only the metadata or the
	// list of existing images changes.
	FileName string
	File     []byte

	BrandName   string
	BrandType   string
	Description string
	Translation string
	Colors      string

	// KeepImages and DeleteImages name images already uploaded to the application.
	KeepImages   []string
	DeleteImages []string
	// Disclaimer must be accepted, the portal silently ignores uploads without it.
	Disclaimer bool
}

func (b BrandUpload) validate() error {
	switch {
	case !b.Disclaimer:
		return validationFailed("the disclaimer must be accepted before uploading the brand")
	case b.ApplicationNo == "":
		return validationFailed("application number is required")
	case b.BrandName == "":
		return validationFailed("brand name is required")
	case len(b.File) > 0 && b.FileName == "":
		return validationFailed("file name is required when uploading a file")
	}
	return nil
}

func (b BrandUpload) fields() url.Values {
	values := url.Values{}
	values.Set("appNo", b.ApplicationNo)
	values.Set("namaMerek", b.BrandName)
	values.Set("tipeMerek", b.BrandType)
	values.Set("deskripsi", b.Description)
	values.Set("terjemahan", b.Translation)
	values.Set("warna", b.Colors)
	values.Set("disclaimer", strconv.FormatBool(b.Disclaimer))
	for _, image := range b.KeepImages {
		values.Add("imageList", image)
	}
	for _, image := range b.DeleteImages {
		values.Add("deleteList", image)
	}
	return values
}

// parts is the multipart body of the upload. The portal only accepts multipart
// here, even when no file is attached.
func (b BrandUpload) parts() []*resty.MultipartField {
	fields := b.fields()
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var parts []*resty.MultipartField
	for _, key := range keys {
		for _, value := range fields[key] {
			parts = append(parts, &resty.MultipartField{
				Param:  key,
				Reader: strings.NewReader(value),
			})
		}
	}
	if len(b.File) > 0 {
		parts = append(parts, &resty.MultipartField{
			Param:       "file",
			FileName:    b.FileName,
			ContentType: http.DetectContentType(b.File),
			Reader:      bytes.NewReader(b.File),
		})
	}
	return parts
}

func (c *client) uploadBrand(ctx context.Context, session Session, upload BrandUpload) (SubmitResult, Session, error) {
	// checked before anything is fetched so a missing disclaimer never burns a token
	err := upload.validate()
	if err != nil {
		return SubmitResult{}, session, err
	}

	token, err := c.fetchEditToken(ctx, session, upload.ApplicationNo)
	if err != nil {
		return SubmitResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetMultipartFields(upload.parts()...).
			Post(c.endpoints.UploadBrand)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return SubmitResult{}, session, err
	}

	return submitResultFrom(res.Body), session.WithoutToken(), nil
}
