package merek

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/login_page.html
var loginPageHtml string

//go:embed testdata/login_error.html
var loginErrorHtml string

//go:embed testdata/edit_page.html
var editPageHtml string

//go:embed testdata/list_page.html
var listPageHtml string

func TestLoginTokenSource(t *testing.T) {
	tokens, err := NewLoginTokenSource().Extract([]byte(loginPageHtml))
	require.NoError(t, err)
	require.Equal(t, "2b1f9c1e-7a57-4c5d-9f0e-55a1c3d7e901", tokens.CsrfToken)
	require.NotNil(t, tokens.Captcha)
	require.Equal(t, "c9f1d2b4e8", tokens.Captcha.ChallengeKey)
	require.True(t, strings.HasPrefix(tokens.Captcha.ImageData, "data:image/png;base64,iVBOR"))
}

func TestLoginTokenSourceMissingMarker(t *testing.T) {
	table := []struct {
		name    string
		remove  string
		missing string
	}{
		{
			name:    "csrf",
			remove:  `<input type="hidden" name="_csrf" value="2b1f9c1e-7a57-4c5d-9f0e-55a1c3d7e901">`,
			missing: "csrf token input",
		},
		{
			name:    "captcha key",
			remove:  `<input type="hidden" name="captchaKey" value="c9f1d2b4e8">`,
			missing: "captcha key input",
		},
		{
			name:    "captcha image",
			remove:  `src="data:image/png;base64,`,
			missing: "captcha image",
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			page := strings.Replace(loginPageHtml, row.remove, "", 1)
			require.NotEqual(t, loginPageHtml, page)

			_, err := NewLoginTokenSource().Extract([]byte(page))
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected a parse error, got %v", err)
			require.Equal(t, row.missing, parseErr.Missing)
		})
	}
}

func TestScriptLiteralTokenSource(t *testing.T) {
	table := []struct {
		name     string
		page     string
		expected string
	}{
		{
			name:     "single quoted",
			page:     editPageHtml,
			expected: "8c4e1f0a-3d6b-4e2a-9b5c-7f1e0d2a3c4b",
		},
		{
			name:     "double quoted",
			page:     listPageHtml,
			expected: "f0e1d2c3-b4a5-4697-8877-665544332211",
		},
		{
			name:     "tight spacing",
			page:     `<html><body><script>var csrf='abc123';</script></body></html>`,
			expected: "abc123",
		},
		{
			name:     "second script",
			page:     `<script>var other = 'x';</script><script>var csrf = "def456" ;</script>`,
			expected: "def456",
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			tokens, err := NewScriptLiteralTokenSource("test page", "csrf").Extract([]byte(row.page))
			require.NoError(t, err)
			require.Equal(t, row.expected, tokens.CsrfToken)
			require.Nil(t, tokens.Captcha)
		})
	}
}

func TestScriptLiteralTokenSourceMissing(t *testing.T) {
	pages := []string{
		"",
		loginPageHtml,
		`<script>var csrfToken = 'nope';</script>`,
		`<script>var csrf = '';</script>`,
		// only script bodies count, not visible text
		`<p>var csrf = 'visible';</p>`,
	}

	for _, page := range pages {
		_, err := NewScriptLiteralTokenSource("edit page", "csrf").Extract([]byte(page))
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), page)
		require.Equal(t, "edit page", parseErr.Page)
	}
}
