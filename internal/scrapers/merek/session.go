package merek

import (
	"encoding/json"
	"slices"
	"strings"
)

// Session is the cookie jar and most recently observed csrf token of one logged in
// portal user. It is a value: steps never modify the session they were given, they
// hand back the session the next step should use.
//
// The engine does not look inside the cookies it holds, they are sent back exactly
// as they were given to it.
type Session struct {
	cookies   []string
	csrfToken string
}

func NewSession(cookies []string, csrfToken string) Session {
	return Session{
		cookies:   slices.Clone(cookies),
		csrfToken: csrfToken,
	}
}

func (s Session) Cookies() []string {
	return slices.Clone(s.cookies)
}

func (s Session) CsrfToken() string {
	return s.csrfToken
}

func (s Session) HasCookies() bool {
	return len(s.cookies) > 0
}

// CookieHeader is the value of the Cookie header for requests made in this session.
func (s Session) CookieHeader() string {
	return strings.Join(s.cookies, "; ")
}

// cookiePairs keeps the name=value part of each Set-Cookie value the portal sent,
// the attributes after it are meant for the browser and not sent back.
func cookiePairs(setCookies []string) []string {
	pairs := make([]string, 0, len(setCookies))
	for _, cookie := range setCookies {
		pair, _, _ := strings.Cut(cookie, ";")
		pair = strings.TrimSpace(pair)
		if pair != "" {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// WithCookies replaces the jar when the portal issued new cookies, an empty
// list keeps the current jar.
func (s Session) WithCookies(cookies []string) Session {
	if len(cookies) == 0 {
		return s
	}
	return Session{cookies: slices.Clone(cookies), csrfToken: s.csrfToken}
}

func (s Session) WithToken(token string) Session {
	return Session{cookies: s.cookies, csrfToken: token}
}

// WithoutToken drops the csrf token, used once a token has been spent or the
// session it belonged to was invalidated.
func (s Session) WithoutToken() Session {
	return Session{cookies: s.cookies}
}

type sessionJson struct {
	Cookies   []string `json:"cookies"`
	CsrfToken string   `json:"csrf_token,omitempty"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	cookies := s.cookies
	if cookies == nil {
		cookies = []string{}
	}
	return json.Marshal(sessionJson{Cookies: cookies, CsrfToken: s.csrfToken})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var decoded sessionJson
	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}
	*s = NewSession(decoded.Cookies, decoded.CsrfToken)
	return nil
}
