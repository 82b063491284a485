// client.go contains the http plumbing shared by every workflow step: building the
// resty client, attaching a session to requests and fetching token pages.

package merek

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"merek-automation/internal/components/chrono"
	"merek-automation/internal/components/telemetry"
	"merek-automation/internal/config"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const csrfHeader = "X-CSRF-TOKEN"

type unexpectedStatusError struct {
	status int
}

func (e *unexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

type client struct {
	http      *resty.Client
	endpoints config.Endpoints
	tel       telemetry.API
	clock     chrono.API

	loginTokens    TokenSource
	newAppTokens   TokenSource
	editTokens     TokenSource
	listPageTokens TokenSource
}

func newClient(
	cfg config.PortalConfig,
	clock chrono.API,
	tel telemetry.API,
	output telemetry.InstrumentOutput,
) (*client, error) {
	_, err := url.Parse(cfg.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseUrl)
	// one client serves every caller, cookies travel in the Session instead of a jar
	httpClient.SetCookieJar(nil)
	if cfg.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if cfg.UserAgent != "" {
		httpClient.SetHeader("user-agent", cfg.UserAgent)
	}
	// redirects are how the portal answers, they must reach the classifier untouched
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	if cfg.TimeoutSeconds > 0 {
		httpClient.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, output)

	return &client{
		http:           httpClient,
		endpoints:      cfg.Endpoints,
		tel:            tel,
		clock:          clock,
		loginTokens:    NewLoginTokenSource(),
		newAppTokens:   NewScriptLiteralTokenSource("new application page", "csrf"),
		editTokens:     NewScriptLiteralTokenSource("edit page", "csrf"),
		listPageTokens: NewScriptLiteralTokenSource("application list page", "csrf"),
	}, nil
}

// request starts a request carrying the session's cookies.
func (c *client) request(ctx context.Context, session Session) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if session.HasCookies() {
		req.SetHeader("Cookie", session.CookieHeader())
	}
	return req
}

// authorized starts a request carrying the session's cookies and `token`.
func (c *client) authorized(ctx context.Context, session Session, token string) *resty.Request {
	return c.request(ctx, session).SetHeader(csrfHeader, token)
}

// send runs `do` and classifies what came back.
func send(do func() (*resty.Response, error), expect Expectation) (Response, Classification, error) {
	res, err := do()
	if err != nil {
		return Response{}, Classification{}, upstreamError(fmt.Errorf("fetch: %w", err))
	}
	response := responseFrom(res)
	verdict := Classify(response, expect)
	return response, verdict, verdict.err(response.StatusCode)
}

// fetchToken gets an authenticated page and reads its csrf token.
func (c *client) fetchToken(
	ctx context.Context,
	session Session,
	path string,
	query map[string]string,
	source TokenSource,
) (string, error) {
	res, _, err := send(func() (*resty.Response, error) {
		return c.request(ctx, session).
			SetQueryParams(query).
			Get(path)
	}, EXPECT_DOCUMENT)
	if err != nil {
		return "", err
	}

	tokens, err := source.Extract(res.Body)
	if err != nil {
		return "", upstreamError(err)
	}
	return tokens.CsrfToken, nil
}

// fetchEditToken gets a fresh token scoped to an application's edit page.
func (c *client) fetchEditToken(ctx context.Context, session Session, applicationNo string) (string, error) {
	return c.fetchToken(
		ctx, session,
		c.endpoints.EditPage,
		map[string]string{"appNo": applicationNo},
		c.editTokens,
	)
}
