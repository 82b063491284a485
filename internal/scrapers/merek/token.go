package merek

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"merek-automation/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PageTokens is what a TokenSource finds in a page. Captcha is only set by sources
// that read the login page.
type PageTokens struct {
	CsrfToken string
	Captcha   *CaptchaMaterial
}

type CaptchaMaterial struct {
	// ImageData is the data uri of the captcha image (data:image/png;base64,...).
	ImageData    string
	ChallengeKey string
}

// TokenSource pulls the csrf token (and captcha material, if any) out of raw page
// html. The portal embeds tokens differently on different pages so every endpoint
// picks the source that matches its page.
type TokenSource interface {
	Extract(page []byte) (PageTokens, error)
}

// MarkupTokenSource reads tokens out of form inputs and the captcha <img> of the
// login page.
type MarkupTokenSource struct {
	Page string
	// TokenInput and ChallengeInput are the `name` attributes of the hidden inputs.
	TokenInput     string
	ChallengeInput string
	// ImagePrefix is the prefix of the captcha image's src attribute.
	ImagePrefix string
}

func NewLoginTokenSource() MarkupTokenSource {
	return MarkupTokenSource{
		Page:           "login page",
		TokenInput:     "_csrf",
		ChallengeInput: "captchaKey",
		ImagePrefix:    "data:image/png;base64,",
	}
}

func (s MarkupTokenSource) Extract(page []byte) (PageTokens, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return PageTokens{}, fmt.Errorf("parse %s html: %w", s.Page, err)
	}

	csrfToken := strings.TrimSpace(
		doc.Find(fmt.Sprintf(`input[name="%s"]`, s.TokenInput)).First().AttrOr("value", ""),
	)
	if csrfToken == "" {
		return PageTokens{}, &ParseError{Page: s.Page, Missing: "csrf token input"}
	}
	challengeKey := strings.TrimSpace(
		doc.Find(fmt.Sprintf(`input[name="%s"]`, s.ChallengeInput)).First().AttrOr("value", ""),
	)
	if challengeKey == "" {
		return PageTokens{}, &ParseError{Page: s.Page, Missing: "captcha key input"}
	}
	image := doc.Find(fmt.Sprintf(`img[src^="%s"]`, s.ImagePrefix)).First().AttrOr("src", "")
	if strings.TrimPrefix(image, s.ImagePrefix) == "" {
		return PageTokens{}, &ParseError{Page: s.Page, Missing: "captcha image"}
	}

	return PageTokens{
		CsrfToken: csrfToken,
		Captcha: &CaptchaMaterial{
			ImageData:    image,
			ChallengeKey: challengeKey,
		},
	}, nil
}

// ScriptLiteralTokenSource reads a token assigned to a javascript variable inside a
// <script> block, ex. `var csrf = '<token>';`.
type ScriptLiteralTokenSource struct {
	Page    string
	pattern *regexp.Regexp
}

func NewScriptLiteralTokenSource(page, variable string) ScriptLiteralTokenSource {
	return ScriptLiteralTokenSource{
		Page: page,
		pattern: regexp.MustCompile(fmt.Sprintf(
			`var\s+%s\s*=\s*(?:'([^'\n]*)'|"([^"\n]*)")\s*;`,
			regexp.QuoteMeta(variable),
		)),
	}
}

func (s ScriptLiteralTokenSource) Extract(page []byte) (PageTokens, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return PageTokens{}, fmt.Errorf("parse %s html: %w", s.Page, err)
	}

	for _, script := range doc.Find("script").Nodes {
		groups := s.pattern.FindStringSubmatch(htmlutil.GetText(script))
		if groups == nil {
			continue
		}
		token := groups[1]
		if token == "" {
			token = groups[2]
		}
		if token == "" {
			continue
		}
		return PageTokens{CsrfToken: token}, nil
	}

	return PageTokens{}, &ParseError{Page: s.Page, Missing: "csrf script variable"}
}
