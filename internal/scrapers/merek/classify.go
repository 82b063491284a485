package merek

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Response is the part of an http response the classifier looks at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func responseFrom(res *resty.Response) Response {
	return Response{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
	}
}

// Expectation describes what a successful response looks like for an endpoint,
// the portal reports errors through a different channel on different endpoints.
type Expectation int

const (
	// EXPECT_REDIRECT is for form posts the portal answers with a redirect when
	// accepted and by rendering the form again (200) when rejected.
	EXPECT_REDIRECT Expectation = iota
	// EXPECT_DOCUMENT is for authenticated pages and ajax endpoints, a redirect
	// there means the portal bounced us to the login page.
	EXPECT_DOCUMENT
)

// Classification is the verdict on a single response.
type Classification struct {
	Kind    OutcomeKind
	Message string
	// Location and Cookies are only set for accepted redirects.
	Location string
	Cookies  []string
}

const errorBannerSelector = ".alert-danger"

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// Classify decides the outcome of a response. It depends on nothing but its
// arguments so the same response always classifies the same way.
func Classify(res Response, expect Expectation) Classification {
	switch expect {
	case EXPECT_REDIRECT:
		return classifyRedirect(res)
	case EXPECT_DOCUMENT:
		return classifyDocument(res)
	}
	return Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream}
}

func classifyRedirect(res Response) Classification {
	switch {
	case isRedirect(res.StatusCode):
		location := res.Header.Get("Location")
		if location == "" {
			return Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream}
		}
		return Classification{
			Kind:     OUTCOME_SUCCESS,
			Location: location,
			Cookies:  res.Header.Values("Set-Cookie"),
		}
	case res.StatusCode == http.StatusOK:
		return Classification{
			Kind:    OUTCOME_AUTHENTICATION_FAILED,
			Message: errorBanner(res.Body, messageLoginFailed),
		}
	}
	return Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream}
}

func classifyDocument(res Response) Classification {
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return Classification{Kind: OUTCOME_SUCCESS}
	case isRedirect(res.StatusCode):
		return Classification{Kind: OUTCOME_SESSION_EXPIRED, Message: messageSessionExpired}
	}
	return Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream}
}

// errorBanner returns the trimmed text of the error alert of a re-rendered form,
// or `fallback` if there is none.
func errorBanner(body []byte, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fallback
	}
	text := strings.TrimSpace(doc.Find(errorBannerSelector).Text())
	if text == "" {
		return fallback
	}
	return text
}

// err converts a non-success classification into the error a step ends with.
func (c Classification) err(status int) error {
	switch c.Kind {
	case OUTCOME_SUCCESS:
		return nil
	case OUTCOME_AUTHENTICATION_FAILED:
		return authenticationFailed(c.Message)
	case OUTCOME_SESSION_EXPIRED:
		return sessionExpired(&unexpectedStatusError{status: status})
	}
	return upstreamError(&unexpectedStatusError{status: status})
}
