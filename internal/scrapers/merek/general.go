package merek

import (
	"context"
	"encoding/json"
	"time"

	"merek-automation/internal/components/chrono"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type ApplicationType string

const (
	APPLICATION_TRADEMARK         ApplicationType = "MEREK_DAGANG"
	APPLICATION_SERVICE_MARK      ApplicationType = "MEREK_JASA"
	APPLICATION_COLLECTIVE_MARK   ApplicationType = "MEREK_KOLEKTIF"
	APPLICATION_TRADE_AND_SERVICE ApplicationType = "MEREK_DAGANG_JASA"
)

func (t ApplicationType) valid() bool {
	switch t {
	case APPLICATION_TRADEMARK, APPLICATION_SERVICE_MARK, APPLICATION_COLLECTIVE_MARK, APPLICATION_TRADE_AND_SERVICE:
		return true
	}
	return false
}

// ApplicantCategory decides the fee schedule: small businesses (UMKM) or everyone else.
type ApplicantCategory string

const (
	CATEGORY_SMALL_BUSINESS ApplicantCategory = "UMKM"
	CATEGORY_GENERAL        ApplicantCategory = "NUMKM"
)

func (c ApplicantCategory) valid() bool {
	return c == CATEGORY_SMALL_BUSINESS || c == CATEGORY_GENERAL
}

// submissionDateLayout is how the portal writes dates, ex. "14/10/2025 11:37:02".
const submissionDateLayout = "02/01/2006 15:04:05"

// GeneralForm is the first stage of an application, the portal assigns the
// application number when it is saved.
type GeneralForm struct {
	// SubmittedAt defaults to now, it is sent in the portal's timezone.
	SubmittedAt time.Time
	Type        ApplicationType
	// Origin defaults to ONLINE.
	Origin      string
	Category    ApplicantCategory
	BillingCode string
}

type generalPayload struct {
	SubmittedAt string            `json:"tanggalPengajuan"`
	Type        ApplicationType   `json:"tipePermohonan"`
	Origin      string            `json:"asalPermohonan"`
	Category    ApplicantCategory `json:"jenisPermohonan"`
	BillingCode string            `json:"kodeBilling,omitempty"`
}

func (f GeneralForm) payload(clock chrono.API) (generalPayload, error) {
	submittedAt := f.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = clock.Now()
	}
	if !f.Type.valid() {
		return generalPayload{}, validationFailed("application type must be one of MEREK_DAGANG, MEREK_JASA, MEREK_KOLEKTIF, MEREK_DAGANG_JASA")
	}
	if !f.Category.valid() {
		return generalPayload{}, validationFailed("applicant category must be one of UMKM, NUMKM")
	}
	origin := f.Origin
	if origin == "" {
		origin = "ONLINE"
	}
	return generalPayload{
		SubmittedAt: submittedAt.In(clock.Location()).Format(submissionDateLayout),
		Type:        f.Type,
		Origin:      origin,
		Category:    f.Category,
		BillingCode: f.BillingCode,
	}, nil
}

type GeneralResult struct {
	ApplicationNo string `json:"application_no"`
	Message       string `json:"message,omitempty"`
}

// SubmitResult is the portal's acknowledgement of a saved stage.
type SubmitResult struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// submitResultFrom reads the {status, message, data} envelope the ajax endpoints
// answer with. Bodies that are not json still count as accepted.
func submitResultFrom(body []byte) SubmitResult {
	if !gjson.ValidBytes(body) {
		return SubmitResult{}
	}
	parsed := gjson.ParseBytes(body)
	result := SubmitResult{
		Status:  parsed.Get("status").String(),
		Message: parsed.Get("message").String(),
	}
	if data := parsed.Get("data"); data.Exists() {
		result.Data = json.RawMessage(data.Raw)
	}
	return result
}

func (c *client) saveGeneral(ctx context.Context, session Session, form GeneralForm) (GeneralResult, Session, error) {
	payload, err := form.payload(c.clock)
	if err != nil {
		return GeneralResult{}, session, err
	}

	token, err := c.fetchToken(ctx, session, c.endpoints.NewApplicationPage, nil, c.newAppTokens)
	if err != nil {
		return GeneralResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetBody(payload).
			Post(c.endpoints.SaveGeneral)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return GeneralResult{}, session, err
	}

	applicationNo := ""
	if gjson.ValidBytes(res.Body) {
		for _, path := range []string{"data.applicationNo", "applicationNo", "data.appNo"} {
			applicationNo = gjson.GetBytes(res.Body, path).String()
			if applicationNo != "" {
				break
			}
		}
	}
	if applicationNo == "" {
		return GeneralResult{}, session, upstreamError(&ParseError{Page: "save general response", Missing: "application number"})
	}

	return GeneralResult{
		ApplicationNo: applicationNo,
		Message:       gjson.GetBytes(res.Body, "message").String(),
	}, session.WithoutToken(), nil
}
