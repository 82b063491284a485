package merek

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// Reference points at a record the portal already knows, like a country or city.
type Reference struct {
	Id string `json:"id"`
}

// ApplicantForm is the applicant stage of an application.
type ApplicantForm struct {
	ApplicationNo string     `json:"appNo"`
	Name          string     `json:"namaPemohon"`
	ApplicantType string     `json:"jenisPemohon"`
	Nationality   Reference  `json:"kewarganegaraan"`
	Email         string     `json:"email"`
	Phone         string     `json:"telepon"`
	Address       string     `json:"alamat"`
	PostalCode    string     `json:"kodePos"`
	Country       Reference  `json:"negara"`
	Province      Reference  `json:"provinsi"`
	City          Reference  `json:"kota"`
	Owner         *Reference `json:"pemilik,omitempty"`
}

func (f ApplicantForm) validate() error {
	switch {
	case f.ApplicationNo == "":
		return validationFailed("application number is required")
	case f.Name == "":
		return validationFailed("applicant name is required")
	case f.Address == "":
		return validationFailed("applicant address is required")
	}
	return nil
}

func (c *client) saveApplicant(ctx context.Context, session Session, form ApplicantForm) (SubmitResult, Session, error) {
	err := form.validate()
	if err != nil {
		return SubmitResult{}, session, err
	}

	token, err := c.fetchEditToken(ctx, session, form.ApplicationNo)
	if err != nil {
		return SubmitResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetBody(form).
			Post(c.endpoints.SaveApplicant)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return SubmitResult{}, session, err
	}

	return submitResultFrom(res.Body), session.WithoutToken(), nil
}
