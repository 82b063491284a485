package merek

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func redirectTo(status int, location string, cookies ...string) Response {
	header := http.Header{}
	if location != "" {
		header.Set("Location", location)
	}
	for _, cookie := range cookies {
		header.Add("Set-Cookie", cookie)
	}
	return Response{StatusCode: status, Header: header}
}

func page(status int, body string) Response {
	return Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
}

func TestClassify(t *testing.T) {
	table := []struct {
		name     string
		res      Response
		expect   Expectation
		expected Classification
	}{
		{
			name:   "login accepted",
			res:    redirectTo(http.StatusFound, "/dashboard", "SESSION=new; Path=/; HttpOnly"),
			expect: EXPECT_REDIRECT,
			expected: Classification{
				Kind:     OUTCOME_SUCCESS,
				Location: "/dashboard",
				Cookies:  []string{"SESSION=new; Path=/; HttpOnly"},
			},
		},
		{
			name:   "login rejected with banner",
			res:    page(http.StatusOK, loginErrorHtml),
			expect: EXPECT_REDIRECT,
			expected: Classification{
				Kind:    OUTCOME_AUTHENTICATION_FAILED,
				Message: "Invalid username, password, or CAPTCHA.",
			},
		},
		{
			name:   "login rejected with multiline banner",
			res:    page(http.StatusOK, "<div class=\"alert alert-danger\">\n  Akun terkunci.\n  Hubungi admin.\n</div>"),
			expect: EXPECT_REDIRECT,
			expected: Classification{
				Kind:    OUTCOME_AUTHENTICATION_FAILED,
				Message: "Akun terkunci.\n  Hubungi admin.",
			},
		},
		{
			name:   "login rejected without banner",
			res:    page(http.StatusOK, loginPageHtml),
			expect: EXPECT_REDIRECT,
			expected: Classification{
				Kind:    OUTCOME_AUTHENTICATION_FAILED,
				Message: messageLoginFailed,
			},
		},
		{
			name:     "redirect without location",
			res:      redirectTo(http.StatusFound, ""),
			expect:   EXPECT_REDIRECT,
			expected: Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream},
		},
		{
			name:     "login server error",
			res:      page(http.StatusInternalServerError, "oops"),
			expect:   EXPECT_REDIRECT,
			expected: Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream},
		},
		{
			name:     "document served",
			res:      page(http.StatusOK, editPageHtml),
			expect:   EXPECT_DOCUMENT,
			expected: Classification{Kind: OUTCOME_SUCCESS},
		},
		{
			name:     "document bounced to login",
			res:      redirectTo(http.StatusFound, "/login"),
			expect:   EXPECT_DOCUMENT,
			expected: Classification{Kind: OUTCOME_SESSION_EXPIRED, Message: messageSessionExpired},
		},
		{
			name:     "document see other",
			res:      redirectTo(http.StatusSeeOther, "/login"),
			expect:   EXPECT_DOCUMENT,
			expected: Classification{Kind: OUTCOME_SESSION_EXPIRED, Message: messageSessionExpired},
		},
		{
			name:     "document not found",
			res:      page(http.StatusNotFound, ""),
			expect:   EXPECT_DOCUMENT,
			expected: Classification{Kind: OUTCOME_UPSTREAM_ERROR, Message: messageUpstream},
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			first := Classify(row.res, row.expect)
			if diff := cmp.Diff(row.expected, first); diff != "" {
				t.Fatalf("classification mismatch (-expected +got):\n%s", diff)
			}
			// classifying again gives the same answer
			require.Equal(t, first, Classify(row.res, row.expect))
		})
	}
}

func TestClassifyRedirectAndRenderAreOpposites(t *testing.T) {
	accepted := Classify(redirectTo(http.StatusFound, "/home"), EXPECT_REDIRECT)
	rejected := Classify(page(http.StatusOK, loginErrorHtml), EXPECT_REDIRECT)
	require.Equal(t, OUTCOME_SUCCESS, accepted.Kind)
	require.Equal(t, OUTCOME_AUTHENTICATION_FAILED, rejected.Kind)

	// the same pair means the opposite on an authenticated page
	require.Equal(t, OUTCOME_SESSION_EXPIRED, Classify(redirectTo(http.StatusFound, "/home"), EXPECT_DOCUMENT).Kind)
	require.Equal(t, OUTCOME_SUCCESS, Classify(page(http.StatusOK, loginErrorHtml), EXPECT_DOCUMENT).Kind)
}

func TestClassificationErr(t *testing.T) {
	require.NoError(t, Classification{Kind: OUTCOME_SUCCESS}.err(http.StatusOK))

	expired := toOutcome(NewSession([]string{"a=1"}, "tok"), 0,
		Classification{Kind: OUTCOME_SESSION_EXPIRED}.err(http.StatusFound))
	require.Equal(t, OUTCOME_SESSION_EXPIRED, expired.Kind)
	require.Equal(t, messageSessionExpired, expired.Message)
	require.Empty(t, expired.Session.CsrfToken())
	require.Equal(t, []string{"a=1"}, expired.Session.Cookies())
}
