package merek

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionIsAValue(t *testing.T) {
	cookies := []string{"SESSION=abc", "lang=id"}
	session := NewSession(cookies, "tok")
	cookies[0] = "SESSION=changed"
	require.Equal(t, []string{"SESSION=abc", "lang=id"}, session.Cookies())

	returned := session.Cookies()
	returned[1] = "lang=en"
	require.Equal(t, "SESSION=abc; lang=id", session.CookieHeader())

	withToken := session.WithToken("next")
	require.Equal(t, "tok", session.CsrfToken())
	require.Equal(t, "next", withToken.CsrfToken())
	require.Empty(t, withToken.WithoutToken().CsrfToken())
	require.Equal(t, session.Cookies(), withToken.WithoutToken().Cookies())
}

func TestSessionWithCookies(t *testing.T) {
	session := NewSession([]string{"SESSION=old"}, "tok")
	require.Equal(t, session, session.WithCookies(nil))

	rotated := session.WithCookies([]string{"SESSION=new", "remember=1"})
	require.Equal(t, "SESSION=new; remember=1", rotated.CookieHeader())

	// a caller's jar may already be a joined header, it is sent back untouched
	joined := NewSession([]string{"JSESSIONID=abc; XSRF-TOKEN=def", "lang=id"}, "")
	require.Equal(t, "JSESSIONID=abc; XSRF-TOKEN=def; lang=id", joined.CookieHeader())
	require.Equal(t, "tok", rotated.CsrfToken())
	require.Equal(t, "SESSION=old", session.CookieHeader())
}

func TestCookiePairs(t *testing.T) {
	require.Equal(t,
		[]string{"SESSION=abc", "lang=id"},
		cookiePairs([]string{"SESSION=abc; Path=/; HttpOnly", " lang=id;Secure", ""}),
	)
	require.Empty(t, cookiePairs(nil))
}

func TestSessionJson(t *testing.T) {
	encoded, err := json.Marshal(NewSession([]string{"SESSION=abc"}, "tok"))
	require.NoError(t, err)
	require.JSONEq(t, `{"cookies":["SESSION=abc"],"csrf_token":"tok"}`, string(encoded))

	encoded, err = json.Marshal(Session{})
	require.NoError(t, err)
	require.JSONEq(t, `{"cookies":[]}`, string(encoded))

	var decoded Session
	err = json.Unmarshal([]byte(`{"cookies":["a=1","b=2"]}`), &decoded)
	require.NoError(t, err)
	require.Equal(t, "a=1; b=2", decoded.CookieHeader())
	require.Empty(t, decoded.CsrfToken())
}

func TestToOutcome(t *testing.T) {
	session := NewSession([]string{"SESSION=abc"}, "tok")

	ok := toOutcome(session, "value", nil)
	require.True(t, ok.Ok())
	require.NoError(t, ok.Err())
	require.Equal(t, "value", ok.Value)
	require.Equal(t, "tok", ok.Session.CsrfToken())

	invalid := toOutcome(session, "", validationFailed("page must be at least 1"))
	require.Equal(t, OUTCOME_VALIDATION_FAILED, invalid.Kind)
	require.Equal(t, "page must be at least 1", invalid.Message)
	require.Equal(t, "tok", invalid.Session.CsrfToken())
	require.ErrorIs(t, invalid.Err(), ErrValidationFailed)

	unreadable := toOutcome(session, "", upstreamError(&ParseError{Page: "edit page", Missing: "csrf"}))
	require.Equal(t, OUTCOME_UPSTREAM_ERROR, unreadable.Kind)
	require.Equal(t, messageUnreadablePage, unreadable.Message)
	require.Empty(t, unreadable.Session.CsrfToken())
	require.ErrorIs(t, unreadable.Err(), ErrUpstream)

	plain := toOutcome(session, "", errors.New("connection reset"))
	require.Equal(t, OUTCOME_UPSTREAM_ERROR, plain.Kind)
	require.Equal(t, messageUpstream, plain.Message)
	require.NotContains(t, plain.Message, "connection reset")

	rejected := toOutcome(session, "", authenticationFailed("Invalid username, password, or CAPTCHA."))
	require.Equal(t, OUTCOME_AUTHENTICATION_FAILED, rejected.Kind)
	require.ErrorIs(t, rejected.Err(), ErrAuthenticationFailed)
}
