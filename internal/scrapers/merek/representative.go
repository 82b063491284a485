package merek

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// saveRepresentative posts the representative (kuasa) stage. The payload is already
// encoded by the caller and is sent exactly as given.
func (c *client) saveRepresentative(
	ctx context.Context,
	session Session,
	applicationNo string,
	payload string,
) (SubmitResult, Session, error) {
	if applicationNo == "" {
		return SubmitResult{}, session, validationFailed("application number is required")
	}
	if payload == "" {
		return SubmitResult{}, session, validationFailed("representative payload is required")
	}

	token, err := c.fetchEditToken(ctx, session, applicationNo)
	if err != nil {
		return SubmitResult{}, session, err
	}

	res, _, err := send(func() (*resty.Response, error) {
		return c.authorized(ctx, session, token).
			SetHeader("content-type", "application/x-www-form-urlencoded").
			SetBody(payload).
			Post(c.endpoints.SaveRepresentative)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return SubmitResult{}, session, err
	}

	return submitResultFrom(res.Body), session.WithoutToken(), nil
}
