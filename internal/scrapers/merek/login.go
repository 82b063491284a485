package merek

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// LoginRequest is a filled in login form for a previously fetched challenge.
type LoginRequest struct {
	Username      string   `json:"username"`
	Password      string   `json:"password"`
	CaptchaAnswer string   `json:"captcha_answer"`
	CaptchaKey    string   `json:"captcha_key"`
	CsrfToken     string   `json:"csrf_token"`
	Cookies       []string `json:"cookies"`
}

func (r LoginRequest) validate() error {
	switch {
	case r.Username == "":
		return validationFailed("username is required")
	case r.Password == "":
		return validationFailed("password is required")
	case r.CaptchaAnswer == "":
		return validationFailed("captcha answer is required")
	case r.CaptchaKey == "":
		return validationFailed("captcha key is required")
	case r.CsrfToken == "":
		return validationFailed("csrf token is required")
	}
	return nil
}

// LoginResult is where the portal sent us after accepting the login.
type LoginResult struct {
	Location string `json:"location"`
}

func (c *client) fetchLoginChallenge(ctx context.Context) (CaptchaChallenge, Session, error) {
	res, verdict, err := send(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			Get(c.endpoints.Login)
	}, EXPECT_DOCUMENT)
	if verdict.Kind == OUTCOME_SESSION_EXPIRED {
		// there is no session yet, being redirected away from the login page is just wrong
		return CaptchaChallenge{}, Session{}, upstreamError(&unexpectedStatusError{status: res.StatusCode})
	}
	if err != nil {
		return CaptchaChallenge{}, Session{}, err
	}

	tokens, err := c.loginTokens.Extract(res.Body)
	if err != nil {
		return CaptchaChallenge{}, Session{}, upstreamError(err)
	}
	if tokens.Captcha == nil {
		return CaptchaChallenge{}, Session{}, upstreamError(&ParseError{Page: "login page", Missing: "captcha"})
	}

	cookies := cookiePairs(res.Header.Values("Set-Cookie"))
	challenge := CaptchaChallenge{
		ImageData:    tokens.Captcha.ImageData,
		ChallengeKey: tokens.Captcha.ChallengeKey,
		CsrfToken:    tokens.CsrfToken,
		Cookies:      cookies,
	}
	return challenge, NewSession(cookies, tokens.CsrfToken), nil
}

func (c *client) login(ctx context.Context, req LoginRequest) (LoginResult, Session, error) {
	session := NewSession(req.Cookies, "")

	err := req.validate()
	if err != nil {
		return LoginResult{}, session, err
	}

	_, verdict, err := send(func() (*resty.Response, error) {
		return c.request(ctx, session).
			SetFormData(map[string]string{
				"username":      req.Username,
				"password":      req.Password,
				"captchaAnswer": req.CaptchaAnswer,
				"captchaKey":    req.CaptchaKey,
				"_csrf":         req.CsrfToken,
			}).
			Post(c.endpoints.Login)
	}, EXPECT_REDIRECT)
	if err != nil {
		return LoginResult{}, session, err
	}

	// the portal rotates the session id on login, the new cookies replace the old ones
	return LoginResult{Location: verdict.Location}, session.WithCookies(cookiePairs(verdict.Cookies)), nil
}

// loginWithRecognizer runs a whole login attempt: fetch a challenge, have the
// recognizer read it and submit. A failed attempt is not retried.
func (c *client) loginWithRecognizer(
	ctx context.Context,
	recognizer Recognizer,
	username, password string,
) (LoginResult, Session, error) {
	if recognizer == nil {
		return LoginResult{}, Session{}, validationFailed("no captcha recognizer is configured")
	}
	if username == "" || password == "" {
		return LoginResult{}, Session{}, validationFailed("username and password are required")
	}

	challenge, session, err := c.fetchLoginChallenge(ctx)
	if err != nil {
		return LoginResult{}, session, err
	}

	answer, err := solveCaptcha(ctx, recognizer, challenge.ImageData)
	if err != nil {
		return LoginResult{}, session, upstreamError(fmt.Errorf("solve captcha: %w", err))
	}

	return c.login(ctx, LoginRequest{
		Username:      username,
		Password:      password,
		CaptchaAnswer: answer,
		CaptchaKey:    challenge.ChallengeKey,
		CsrfToken:     challenge.CsrfToken,
		Cookies:       challenge.Cookies,
	})
}
