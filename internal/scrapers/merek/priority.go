package merek

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// priorityDateLayout is the date format of priority claims, ex. "14/10/2025".
const priorityDateLayout = "02/01/2006"

// PriorityClaim claims the date of an earlier filing of the same mark in another country.
type PriorityClaim struct {
	ApplicationNo string
	Date          time.Time
	// Country is the portal's country code.
	Country string
	ClaimNo string
}

func (p PriorityClaim) query() (map[string]string, error) {
	switch {
	case p.ApplicationNo == "":
		return nil, validationFailed("application number is required")
	case p.Date.IsZero():
		return nil, validationFailed("priority date is required")
	case p.Country == "":
		return nil, validationFailed("priority country is required")
	case p.ClaimNo == "":
		return nil, validationFailed("priority claim number is required")
	}
	return map[string]string{
		"appNo":       p.ApplicationNo,
		"tglPrior":    p.Date.Format(priorityDateLayout),
		"negaraPrior": p.Country,
		"noPrior":     p.ClaimNo,
	}, nil
}

// PriorityRecord is a priority claim already saved on an application.
type PriorityRecord struct {
	Id      string `json:"id"`
	Date    string `json:"date"`
	Country string `json:"country"`
	ClaimNo string `json:"claim_no"`
}

func firstString(value gjson.Result, keys ...string) string {
	for _, key := range keys {
		found := value.Get(key)
		if found.Exists() && found.String() != "" {
			return found.String()
		}
	}
	return ""
}

func priorityRecordsFrom(body []byte) ([]PriorityRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{Page: "priority list", Missing: "json body"}
	}
	list := gjson.GetBytes(body, "data")
	if !list.Exists() {
		list = gjson.ParseBytes(body)
	}
	if !list.IsArray() {
		return nil, &ParseError{Page: "priority list", Missing: "list of priorities"}
	}

	records := []PriorityRecord{}
	for _, item := range list.Array() {
		records = append(records, PriorityRecord{
			Id:      firstString(item, "idPrior", "id"),
			Date:    firstString(item, "tglPrior", "priorityDate"),
			Country: firstString(item, "negaraPrior", "country"),
			ClaimNo: firstString(item, "noPrior", "priorityNo"),
		})
	}
	return records, nil
}

func (c *client) addPriority(ctx context.Context, session Session, claim PriorityClaim) (SubmitResult, Session, error) {
	query, err := claim.query()
	if err != nil {
		return SubmitResult{}, session, err
	}

	token, err := c.fetchEditToken(ctx, session, claim.ApplicationNo)
	if err != nil {
		return SubmitResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetQueryParams(query).
			Get(c.endpoints.AddPriority)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return SubmitResult{}, session, err
	}

	return submitResultFrom(res.Body), session.WithoutToken(), nil
}

// listPriorities reads the priority claims of an application. Listing spends no
// token, the session comes back holding the edit page token it used.
func (c *client) listPriorities(ctx context.Context, session Session, applicationNo string) ([]PriorityRecord, Session, error) {
	if applicationNo == "" {
		return nil, session, validationFailed("application number is required")
	}

	token, err := c.fetchEditToken(ctx, session, applicationNo)
	if err != nil {
		return nil, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetQueryParam("appNo", applicationNo).
			Get(c.endpoints.ListPriority)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return nil, session, err
	}

	records, err := priorityRecordsFrom(res.Body)
	if err != nil {
		return nil, session, upstreamError(err)
	}
	return records, session.WithToken(token), nil
}

func (c *client) deletePriority(
	ctx context.Context,
	session Session,
	applicationNo, priorityId string,
) (SubmitResult, Session, error) {
	if applicationNo == "" {
		return SubmitResult{}, session, validationFailed("application number is required")
	}
	if priorityId == "" {
		return SubmitResult{}, session, validationFailed("priority id is required")
	}

	token, err := c.fetchEditToken(ctx, session, applicationNo)
	if err != nil {
		return SubmitResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetFormData(map[string]string{"idPrior": priorityId}).
			Post(c.endpoints.DeletePriority)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return SubmitResult{}, session, err
	}

	return submitResultFrom(res.Body), session.WithoutToken(), nil
}
